package location

import "context"

// Provider interface defines the methods for initial location providers
type Provider interface {
	GetLocation(ctx context.Context) (Location, error)
	Close() error
}

// StaticProvider always answers with a fixed point.
type StaticProvider struct {
	location Location
}

// NewStaticProvider creates a provider that returns loc.
func NewStaticProvider(loc Location) *StaticProvider {
	return &StaticProvider{location: loc}
}

// GetLocation returns the configured point.
func (s *StaticProvider) GetLocation(_ context.Context) (Location, error) {
	return s.location, nil
}

// Close is a no-op.
func (s *StaticProvider) Close() error { return nil }

// Resolve asks the provider for a fix and falls back to fallback when the provider is nil or fails.
// The returned error is the provider's, so callers can log it; the location is always usable.
func Resolve(ctx context.Context, provider Provider, fallback Location) (Location, error) {
	if provider == nil {
		return fallback, nil
	}
	loc, err := provider.GetLocation(ctx)
	if err != nil {
		return fallback, err
	}
	if !loc.Valid() {
		return fallback, ErrInvalidFix
	}
	return loc, nil
}
