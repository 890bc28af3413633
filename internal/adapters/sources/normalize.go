package sources

import (
	"strings"

	"github.com/tidwall/gjson"

	"pitstop-service/internal/domain"
)

// FieldPaths maps a source's raw record layout onto Place fields. Each field
// lists gjson paths tried in order; the first non-empty match wins.
type FieldPaths struct {
	Name        []string
	Description []string
	Lat         []string
	Lon         []string
}

var (
	overpassFields = FieldPaths{
		Name:        []string{"tags.name", "tags.operator"},
		Description: []string{"tags.description", "tags.note"},
		Lat:         []string{"lat", "center.lat"},
		Lon:         []string{"lon", "center.lon"},
	}

	placesFields = FieldPaths{
		Name:        []string{"name"},
		Description: []string{"formatted_address", "vicinity"},
		Lat:         []string{"geometry.location.lat"},
		Lon:         []string{"geometry.location.lng"},
	}
)

// Normalize converts one raw record. Blank text fields become the domain
// placeholders; missing or non-numeric coordinates stay nil.
func (f FieldPaths) Normalize(raw gjson.Result) domain.Place {
	return domain.NewPlace(
		firstString(raw, f.Name),
		firstString(raw, f.Description),
		firstNumber(raw, f.Lat),
		firstNumber(raw, f.Lon),
	)
}

func firstString(raw gjson.Result, paths []string) string {
	for _, p := range paths {
		v := raw.Get(p)
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return v.Str
		}
	}
	return ""
}

func firstNumber(raw gjson.Result, paths []string) *float64 {
	for _, p := range paths {
		v := raw.Get(p)
		if v.Type == gjson.Number {
			n := v.Num
			return &n
		}
	}
	return nil
}
