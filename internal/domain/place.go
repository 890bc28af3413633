package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultName replaces a missing or blank source name.
	DefaultName = "Public Restroom"
	// DefaultDescription replaces a missing or blank source description.
	DefaultDescription = "No description available"
)

// Represents a single restroom location, the only entity the service stores.
// ID is assigned by the store at write time and never changes afterwards.
// Lat and Lon are nil when the source record carried no geometry.
type Place struct {
	ID          string
	Name        string
	Description string
	Lat         *float64
	Lon         *float64
}

// NewPlace builds a Place with placeholder text substituted for blank fields.
func NewPlace(name, description string, lat, lon *float64) Place {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultDescription
	}

	return Place{
		Name:        name,
		Description: description,
		Lat:         lat,
		Lon:         lon,
	}
}

// Mappable reports whether both coordinates are present and finite. Range is
// not checked here.
func (p Place) Mappable() bool {
	if p.Lat == nil || p.Lon == nil {
		return false
	}
	return Coordinates{Lat: *p.Lat, Lon: *p.Lon}.Finite()
}

// Coordinates returns the position of a mappable place.
func (p Place) Coordinates() (Coordinates, bool) {
	if !p.Mappable() {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *p.Lat, Lon: *p.Lon}, true
}

// DedupeKey identifies places that describe the same restroom: the
// lower-cased name plus coordinates rounded to five decimals (~1m).
func (p Place) DedupeKey() string {
	lat, lon := "-", "-"
	if p.Lat != nil {
		lat = fmt.Sprintf("%.5f", roundTo(*p.Lat, 5))
	}
	if p.Lon != nil {
		lon = fmt.Sprintf("%.5f", roundTo(*p.Lon, 5))
	}

	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(p.Name)) + "|" + lat + "|" + lon))
	return hex.EncodeToString(sum[:])
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Float returns a pointer to v, for building places with coordinates.
func Float(v float64) *float64 { return &v }
