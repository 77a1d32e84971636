package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/merchant-intake/pkg/location"
)

// MockGeocoder is a mock implementation of the geocode.Geocoder interface
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, loc location.Location) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

func (m *MockGeocoder) ForwardGeocode(ctx context.Context, address string) (location.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(location.Location), args.Error(1)
}
