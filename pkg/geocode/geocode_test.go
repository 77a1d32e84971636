package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/merchant-intake/pkg/location"
	"github.com/benmeehan/merchant-intake/tests/mocks"
)

func newTestGoogleGeocoder(t *testing.T, handler http.HandlerFunc) *GoogleGeocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGoogleGeocoder("test-key", WithBaseURL(server.URL), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return g
}

func TestNewGoogleGeocoder_NonPositiveTimeoutKeepsDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		g, err := NewGoogleGeocoder("test-key", WithTimeout(d))
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, g.timeout)
	}
}

func TestNewGoogleGeocoder_MissingKey(t *testing.T) {
	_, err := NewGoogleGeocoder("  ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGoogleGeocoder_ReverseGeocode(t *testing.T) {
	g := newTestGoogleGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "-6.2088,106.8456", r.URL.Query().Get("latlng"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Jl. Medan Merdeka, Jakarta","geometry":{"location":{"lat":-6.2088,"lng":106.8456}}}]}`))
	})

	address, err := g.ReverseGeocode(context.Background(), location.Location{Latitude: -6.2088, Longitude: 106.8456})
	require.NoError(t, err)
	assert.Equal(t, "Jl. Medan Merdeka, Jakarta", address)
}

func TestGoogleGeocoder_ForwardGeocode(t *testing.T) {
	g := newTestGoogleGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Monas, Jakarta", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Monas","geometry":{"location":{"lat":-6.1754,"lng":106.8272}}}]}`))
	})

	loc, err := g.ForwardGeocode(context.Background(), "Monas, Jakarta")
	require.NoError(t, err)
	assert.Equal(t, location.Location{Latitude: -6.1754, Longitude: 106.8272}, loc)
}

func TestGoogleGeocoder_ForwardGeocode_ZeroResults(t *testing.T) {
	g := newTestGoogleGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := g.ForwardGeocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, classify("x", context.DeadlineExceeded).Type)
	assert.Equal(t, ErrorTypeQuotaExceeded, classify("x", errors.New("maps: OVER_QUERY_LIMIT - ")).Type)
	assert.Equal(t, ErrorTypeInvalidRequest, classify("x", errors.New("maps: REQUEST_DENIED - bad key")).Type)
	assert.Equal(t, ErrorTypeNetworkError, classify("x", errors.New("dial tcp: connection refused")).Type)
	assert.Equal(t, ErrorTypeUnknown, classify("x", errors.New("boom")).Type)
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("foreign")))
}

func TestCachingGeocoder_CachesSuccessOnly(t *testing.T) {
	next := new(mocks.MockGeocoder)
	loc := location.Location{Latitude: -6.2088001, Longitude: 106.8456001}

	next.On("ReverseGeocode", mock.Anything, loc).Return("", errors.New("temporary")).Once()
	next.On("ReverseGeocode", mock.Anything, loc).Return("Jakarta", nil).Once()
	next.On("ForwardGeocode", mock.Anything, "Jl. Thamrin  1").Return(loc, nil).Once()

	c := NewCachingGeocoder(next, 5)

	_, err := c.ReverseGeocode(context.Background(), loc)
	assert.Error(t, err)

	for i := 0; i < 3; i++ {
		address, err := c.ReverseGeocode(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, "Jakarta", address)
	}

	got, err := c.ForwardGeocode(context.Background(), "Jl. Thamrin  1")
	require.NoError(t, err)
	assert.Equal(t, loc, got)

	// key is case and whitespace insensitive
	got, err = c.ForwardGeocode(context.Background(), "jl. thamrin 1")
	require.NoError(t, err)
	assert.Equal(t, loc, got)

	assert.Equal(t, 2, c.Len())
	next.AssertExpectations(t)
}
