package location

import (
	"encoding/json"
	"fmt"
)

// Location represents a pair of geographical coordinates.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// JSON returns the compact JSON encoding of the location, e.g. {"lat":-6.2,"lng":106.8}.
func (l Location) JSON() string {
	data, err := json.Marshal(l)
	if err != nil {
		// float64 pairs only fail on NaN/Inf
		return fmt.Sprintf(`{"lat":%v,"lng":%v}`, l.Latitude, l.Longitude)
	}
	return string(data)
}

// Valid reports whether the coordinates fall inside the WGS84 ranges.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}
