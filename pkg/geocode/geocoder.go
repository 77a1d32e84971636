package geocode

import (
	"context"

	"github.com/benmeehan/merchant-intake/pkg/location"
)

// Geocoder converts between coordinates and postal address strings.
type Geocoder interface {
	// ReverseGeocode converts coordinates to a formatted address.
	ReverseGeocode(ctx context.Context, loc location.Location) (string, error)

	// ForwardGeocode converts a free-text address to coordinates.
	ForwardGeocode(ctx context.Context, address string) (location.Location, error)
}
