package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/merchant-intake/internal/constants"
	"github.com/benmeehan/merchant-intake/internal/models"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		img.Set(x, x%24, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (summary, string, error) {
	t.Helper()
	t.Setenv("MAPS_API_KEY", "")

	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	var s summary
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &s))
	}
	return s, stderr.String(), err
}

func TestRegister_WritesRecord(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "registration.json")

	s, _, err := execute(t, "register",
		"--log-format", "json",
		"--name", "Warung Sari",
		"--description", "Nasi goreng",
		"--address", "Jl. Medan Merdeka",
		"--image", writePNG(t, dir, "a.png"),
		"--image", writePNG(t, dir, "b.png"),
		"--image", writePNG(t, dir, "c.png"),
		"--out", out,
	)
	require.NoError(t, err)

	assert.True(t, s.Submitted)
	assert.Equal(t, 3, s.Images)
	assert.Equal(t, "Jl. Medan Merdeka", s.Address)
	assert.Equal(t, constants.DefaultLatitude, s.Location.Latitude)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var record models.RegistrationRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "Warung Sari", record.BusinessName)
	assert.Len(t, record.Images, 3)
	assert.JSONEq(t, `{"lat":-6.2088,"lng":106.8456}`, record.Location)
}

func TestRegister_InsufficientImages(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "registration.json")

	s, _, err := execute(t, "register",
		"--name", "Warung Sari",
		"--description", "Nasi goreng",
		"--address", "Jl. Medan Merdeka",
		"--image", writePNG(t, dir, "a.png"),
		"--out", out,
	)
	require.Error(t, err)

	assert.False(t, s.Submitted)
	assert.Equal(t, constants.MsgInsufficientImages, s.Error)
	assert.NoFileExists(t, out)
}

func TestRegister_MissingDescription(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "registration.json")

	s, _, err := execute(t, "register",
		"--name", "Warung Sari",
		"--address", "Jl. Medan Merdeka",
		"--image", writePNG(t, dir, "a.png"),
		"--image", writePNG(t, dir, "b.png"),
		"--image", writePNG(t, dir, "c.png"),
		"--out", out,
	)
	require.Error(t, err)

	assert.False(t, s.Submitted)
	assert.Equal(t, "Please fill in the description", s.Error)
	assert.NoFileExists(t, out)
}

func TestRegister_MissingImageFile(t *testing.T) {
	_, _, err := execute(t, "register",
		"--name", "Warung Sari",
		"--image", filepath.Join(t.TempDir(), "missing.png"),
		"--out", filepath.Join(t.TempDir(), "registration.json"),
	)
	assert.Error(t, err)
}

func TestRegister_AddressAndLocationAreExclusive(t *testing.T) {
	_, _, err := execute(t, "register",
		"--address", "Jl. Medan Merdeka",
		"--lat", "-6.1", "--lng", "106.8",
		"--image", "a.png",
	)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "merchant version dev")
}
