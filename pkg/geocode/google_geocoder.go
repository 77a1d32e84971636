package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/benmeehan/merchant-intake/pkg/location"
)

// DefaultTimeout bounds a single geocoding call.
const DefaultTimeout = 10 * time.Second

// GoogleGeocoder uses the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client   *maps.Client // Maps API client for making geocoding requests
	timeout  time.Duration
	region   string
	language string
}

// GoogleOption customizes a GoogleGeocoder.
type GoogleOption func(*googleSettings)

type googleSettings struct {
	timeout  time.Duration
	region   string
	language string
	baseURL  string
}

// WithTimeout sets the per-call timeout. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) GoogleOption {
	return func(s *googleSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRegion biases forward lookups to a ccTLD region code, e.g. "id".
func WithRegion(region string) GoogleOption {
	return func(s *googleSettings) { s.region = region }
}

// WithLanguage sets the language of formatted addresses.
func WithLanguage(language string) GoogleOption {
	return func(s *googleSettings) { s.language = language }
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(baseURL string) GoogleOption {
	return func(s *googleSettings) { s.baseURL = baseURL }
}

// NewGoogleGeocoder creates a new GoogleGeocoder instance.
func NewGoogleGeocoder(apiKey string, opts ...GoogleOption) (*GoogleGeocoder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	settings := googleSettings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&settings)
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if settings.baseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(settings.baseURL))
	}

	c, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, err
	}

	return &GoogleGeocoder{
		client:   c,
		timeout:  settings.timeout,
		region:   settings.region,
		language: settings.language,
	}, nil
}

// ReverseGeocode returns the formatted address of the best match for loc.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, loc location.Location) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
		Language: g.language,
	}

	results, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return "", classify("reverse geocoding failed", err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no address found for %s", loc)}
	}

	return results[0].FormattedAddress, nil
}

// ForwardGeocode returns the coordinates of the best match for address.
func (g *GoogleGeocoder) ForwardGeocode(ctx context.Context, address string) (location.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &maps.GeocodingRequest{
		Address:  address,
		Region:   g.region,
		Language: g.language,
	}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		return location.Location{}, classify("forward geocoding failed", err)
	}
	if len(results) == 0 {
		return location.Location{}, &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results found for address: %s", address)}
	}

	return location.Location{
		Latitude:  results[0].Geometry.Location.Lat,
		Longitude: results[0].Geometry.Location.Lng,
	}, nil
}
