package constants

const (
	// DefaultLatitude and DefaultLongitude are the fallback map center (Jakarta).
	DefaultLatitude  = -6.2088
	DefaultLongitude = 106.8456
)
