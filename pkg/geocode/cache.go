package geocode

import (
	"context"
	"fmt"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/benmeehan/merchant-intake/pkg/location"
)

// CachingGeocoder memoizes successful lookups of another Geocoder.
// Failures are never cached.
type CachingGeocoder struct {
	next      Geocoder
	precision int
	addresses cmap.ConcurrentMap[string, string]
	locations cmap.ConcurrentMap[string, location.Location]
}

// NewCachingGeocoder wraps next. Coordinates are keyed at the given number of decimals
// (5 decimals is roughly one metre).
func NewCachingGeocoder(next Geocoder, precision int) *CachingGeocoder {
	if precision <= 0 {
		precision = 5
	}
	return &CachingGeocoder{
		next:      next,
		precision: precision,
		addresses: cmap.New[string](),
		locations: cmap.New[location.Location](),
	}
}

func (c *CachingGeocoder) coordKey(loc location.Location) string {
	return fmt.Sprintf("%.*f,%.*f", c.precision, loc.Latitude, c.precision, loc.Longitude)
}

func addressKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// ReverseGeocode serves from cache or delegates.
func (c *CachingGeocoder) ReverseGeocode(ctx context.Context, loc location.Location) (string, error) {
	key := c.coordKey(loc)
	if address, ok := c.addresses.Get(key); ok {
		return address, nil
	}

	address, err := c.next.ReverseGeocode(ctx, loc)
	if err != nil {
		return "", err
	}
	c.addresses.Set(key, address)
	return address, nil
}

// ForwardGeocode serves from cache or delegates.
func (c *CachingGeocoder) ForwardGeocode(ctx context.Context, address string) (location.Location, error) {
	key := addressKey(address)
	if loc, ok := c.locations.Get(key); ok {
		return loc, nil
	}

	loc, err := c.next.ForwardGeocode(ctx, address)
	if err != nil {
		return location.Location{}, err
	}
	c.locations.Set(key, loc)
	return loc, nil
}

// Len returns the number of cached entries in both directions.
func (c *CachingGeocoder) Len() int {
	return c.addresses.Count() + c.locations.Count()
}
