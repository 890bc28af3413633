package repositories

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/ports"
)

// PlaceSeed is one entry of a seed file. Ids are assigned on insert.
type PlaceSeed struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// LoadSeedFile reads and validates a JSON array of seed places.
func LoadSeedFile(jsonPath string) ([]domain.Place, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, eris.Wrapf(err, "seed restrooms: read %q", jsonPath)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, eris.Wrap(err, "seed restrooms: parse json")
	}

	places := make([]domain.Place, 0, len(data))
	for i, item := range data {
		if strings.TrimSpace(item.Name) == "" {
			return nil, eris.Errorf("seed restrooms: item at index %d: name cannot be empty", i+1)
		}
		if (item.Lat == nil) != (item.Lon == nil) {
			return nil, eris.Errorf("seed restrooms: item at index %d: lat and lon must be given together", i+1)
		}

		p := domain.NewPlace(item.Name, item.Description, item.Lat, item.Lon)
		if c, ok := p.Coordinates(); ok && !c.InRange() {
			return nil, eris.Errorf("seed restrooms: item at index %d: coordinates out of range", i+1)
		}
		places = append(places, p)
	}

	return places, nil
}

// SeedFromJSON loads a seed file into store and returns how many places were
// committed.
func SeedFromJSON(ctx context.Context, store ports.RestroomStore, jsonPath string) (int, error) {
	places, err := LoadSeedFile(jsonPath)
	if err != nil {
		return 0, err
	}

	n, err := store.BulkInsert(ctx, places)
	if err != nil {
		return n, eris.Wrapf(err, "seed restrooms: insert %d places", len(places))
	}
	return n, nil
}
