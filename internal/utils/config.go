package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/merchant-intake/internal/constants"
	"github.com/benmeehan/merchant-intake/pkg/file"
	"github.com/benmeehan/merchant-intake/pkg/intake"
	"github.com/benmeehan/merchant-intake/pkg/location"
)

const (
	// MapsAPIKeyEnv overrides geocoding.maps_api_key when set.
	MapsAPIKeyEnv = "MAPS_API_KEY"

	// DefaultConfigPath is read when no path is given and the file exists.
	DefaultConfigPath = "configs/config.yaml"
)

// Config represents the structure of the configuration file.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`  // zerolog level name (debug, info, warn, error)
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`

	Intake struct {
		MaxFileSize    int64 `yaml:"max_file_size"`    // Raw per-file ceiling in bytes
		MaxEncodedSize int64 `yaml:"max_encoded_size"` // Per-image ceiling after compression in bytes
		MaxDimension   int   `yaml:"max_dimension"`    // Longer side bound in pixels
		Quality        int   `yaml:"quality"`          // JPEG quality 1-100
		Workers        int   `yaml:"workers"`          // Concurrent compressions per batch, 0 = one per file
		MaxPixels      int64 `yaml:"max_pixels"`       // Width*height ceiling checked before decoding
	} `yaml:"intake"`

	Geocoding struct {
		MapsAPIKey     string        `yaml:"maps_api_key"`    // Google maps API Key
		Timeout        time.Duration `yaml:"timeout"`         // Timeout per geocoding call
		Region         string        `yaml:"region"`          // Region bias for forward lookups
		Language       string        `yaml:"language"`        // Language of returned addresses
		CacheEnabled   bool          `yaml:"cache_enabled"`   // Memoize successful lookups
		CachePrecision int           `yaml:"cache_precision"` // Decimals of the coordinate cache key
	} `yaml:"geocoding"`

	Location struct {
		DefaultLatitude   float64       `yaml:"default_latitude"`  // Fallback map center latitude
		DefaultLongitude  float64       `yaml:"default_longitude"` // Fallback map center longitude
		SensorEnabled     bool          `yaml:"sensor_enabled"`    // Seed the form from a GPS sensor
		GPSDevicePort     string        `yaml:"gps_device_port"`   // UNIX Port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`     // The Baud rate for GPS sensor
		SensorTimeout     time.Duration `yaml:"sensor_timeout"`    // Max wait for a fix
	} `yaml:"location"`

	Submission struct {
		Broker         string        `yaml:"broker"`          // MQTT broker address
		ClientID       string        `yaml:"client_id"`       // MQTT client ID prefix
		Username       string        `yaml:"username"`        // MQTT username
		Password       string        `yaml:"password"`        // MQTT password
		CACertificate  string        `yaml:"ca_certificate"`  // Path to the CA certificate
		Topic          string        `yaml:"topic"`           // MQTT topic for registrations
		QOS            int           `yaml:"qos"`             // MQTT QoS level for registration messages
		PublishTimeout time.Duration `yaml:"publish_timeout"` // Max wait for the broker to ack a publish
		Timeout        time.Duration `yaml:"timeout"`         // Max duration of a whole submission, 0 = unbounded
	} `yaml:"submission"`

	Storage struct {
		Enabled         bool          `yaml:"enabled"`           // Upload images to object storage before publishing
		Endpoint        string        `yaml:"endpoint"`          // Object storage endpoint host:port
		AccessKeyID     string        `yaml:"access_key_id"`     // Access key
		SecretAccessKey string        `yaml:"secret_access_key"` // Secret key
		UseSSL          bool          `yaml:"use_ssl"`           // Use https
		Bucket          string        `yaml:"bucket"`            // Bucket for merchant images
		PresignExpiry   time.Duration `yaml:"presign_expiry"`    // Lifetime of image URLs in the published record
	} `yaml:"storage"`
}

// DefaultConfig returns a configuration that works without a file: no map key, no broker.
func DefaultConfig() *Config {
	var c Config
	c.Log.Level = "info"
	c.Log.Format = "console"

	opts := intake.DefaultOptions()
	c.Intake.MaxFileSize = opts.MaxFileSize
	c.Intake.MaxEncodedSize = opts.MaxEncodedSize
	c.Intake.MaxDimension = opts.MaxDimension
	c.Intake.Quality = opts.Quality
	c.Intake.MaxPixels = opts.MaxPixels

	c.Geocoding.Timeout = 10 * time.Second
	c.Geocoding.CacheEnabled = true
	c.Geocoding.CachePrecision = 5

	c.Location.DefaultLatitude = constants.DefaultLatitude
	c.Location.DefaultLongitude = constants.DefaultLongitude
	c.Location.GPSDeviceBaudRate = 9600
	c.Location.SensorTimeout = 5 * time.Second

	c.Submission.ClientID = "merchant-intake"
	c.Submission.Topic = "merchants/registrations"
	c.Submission.QOS = 1
	c.Submission.PublishTimeout = 10 * time.Second
	c.Submission.Timeout = time.Minute

	c.Storage.Bucket = "merchant-images"
	c.Storage.PresignExpiry = 7 * 24 * time.Hour
	return &c
}

// LoadConfig loads the YAML configuration from the specified file over the defaults.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()

	if filename == "" {
		exists, err := fileClient.IsFileExists(DefaultConfigPath)
		if err != nil {
			return nil, err
		}
		if exists {
			filename = DefaultConfigPath
		}
	}

	if filename != "" {
		if err := fileClient.ReadYamlFile(filename, config); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv(MapsAPIKeyEnv); key != "" {
		config.Geocoding.MapsAPIKey = key
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	if c.Intake.MaxFileSize <= 0 || c.Intake.MaxEncodedSize <= 0 {
		errs = append(errs, errors.New("intake size limits must be positive"))
	}
	if c.Intake.MaxDimension <= 0 {
		errs = append(errs, errors.New("intake.max_dimension must be positive"))
	}
	if c.Intake.Quality < 1 || c.Intake.Quality > 100 {
		errs = append(errs, fmt.Errorf("intake.quality must be within 1-100, got %d", c.Intake.Quality))
	}
	if c.Intake.MaxPixels <= 0 {
		errs = append(errs, errors.New("intake.max_pixels must be positive"))
	}
	if c.Geocoding.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("geocoding.timeout must be positive, got %s", c.Geocoding.Timeout))
	}
	if c.Intake.Workers < 0 {
		errs = append(errs, errors.New("intake.workers must not be negative"))
	}
	fallback := location.Location{Latitude: c.Location.DefaultLatitude, Longitude: c.Location.DefaultLongitude}
	if !fallback.Valid() {
		errs = append(errs, fmt.Errorf("location default %s is out of range", fallback))
	}
	if c.Location.SensorEnabled && c.Location.GPSDevicePort == "" {
		errs = append(errs, errors.New("location.gps_device_port is required when sensor_enabled is set"))
	}
	if c.Submission.QOS < 0 || c.Submission.QOS > 2 {
		errs = append(errs, fmt.Errorf("submission.qos must be 0, 1 or 2, got %d", c.Submission.QOS))
	}
	if c.Submission.Timeout < 0 {
		errs = append(errs, errors.New("submission.timeout must not be negative"))
	}
	if c.Storage.Enabled && (c.Storage.Endpoint == "" || c.Storage.Bucket == "") {
		errs = append(errs, errors.New("storage.endpoint and storage.bucket are required when storage is enabled"))
	}

	return errors.Join(errs...)
}

// IntakeOptions maps the intake section onto pipeline options.
func (c *Config) IntakeOptions() intake.Options {
	return intake.Options{
		MaxFileSize:    c.Intake.MaxFileSize,
		MaxEncodedSize: c.Intake.MaxEncodedSize,
		MaxDimension:   c.Intake.MaxDimension,
		Quality:        c.Intake.Quality,
		Workers:        c.Intake.Workers,
		MaxPixels:      c.Intake.MaxPixels,
	}
}

// FallbackLocation returns the configured default point.
func (c *Config) FallbackLocation() location.Location {
	return location.Location{Latitude: c.Location.DefaultLatitude, Longitude: c.Location.DefaultLongitude}
}
