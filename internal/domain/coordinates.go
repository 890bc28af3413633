package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for GeoJSON compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Finite reports whether neither component is NaN or infinite.
func (c Coordinates) Finite() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}

// InRange reports whether c is finite and within WGS84 range.
func (c Coordinates) InRange() bool {
	return c.Finite() && c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// BoundingBox is a south/west/north/east rectangle, the order Overpass QL expects.
type BoundingBox struct {
	South float64 `yaml:"south" json:"south"`
	West  float64 `yaml:"west" json:"west"`
	North float64 `yaml:"north" json:"north"`
	East  float64 `yaml:"east" json:"east"`
}

func (b BoundingBox) Validate() error {
	if !(Coordinates{Lat: b.South, Lon: b.West}).InRange() || !(Coordinates{Lat: b.North, Lon: b.East}).InRange() {
		return fmt.Errorf("bounding box %s: coordinates out of range", b)
	}
	if b.South > b.North {
		return fmt.Errorf("bounding box %s: south must not exceed north", b)
	}
	if b.West > b.East {
		return fmt.Errorf("bounding box %s: west must not exceed east", b)
	}
	return nil
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lon >= b.West && c.Lon <= b.East
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.4f,%.4f,%.4f,%.4f)", b.South, b.West, b.North, b.East)
}
