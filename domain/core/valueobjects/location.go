package valueobjects

import "fmt"

// Location is an optional geographic coordinate attached to a node.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// NewLocation creates a validated location
func NewLocation(lat, lon, alt float64) (Location, error) {
	loc := Location{Latitude: lat, Longitude: lon, Altitude: alt}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Validate checks the coordinate ranges
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be in [-90,90], got %v", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be in [-180,180], got %v", l.Longitude)
	}
	return nil
}

// Equals checks if two locations are equal
func (l Location) Equals(other Location) bool {
	return l.Latitude == other.Latitude &&
		l.Longitude == other.Longitude &&
		l.Altitude == other.Altitude
}
