package repositories

import (
	"fmt"

	"go.uber.org/zap"

	"pitstop-service/internal/domain"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// mbebRestrooms are the four business building entries of the shipped seed list.
func mbebRestrooms() []domain.Place {
	lat, lon := 43.6035, -116.2020
	return []domain.Place{
		domain.NewPlace("MBEB – First Floor Restroom", "Located near the Skaggs Hall of Learning in the southwest corner.", domain.Float(lat), domain.Float(lon)),
		domain.NewPlace("MBEB – Second Floor Restroom", "Adjacent to the Imagination Lab in the annex.", domain.Float(lat), domain.Float(lon)),
		domain.NewPlace("MBEB – Third Floor Restroom", "Near the Department of Accountancy offices.", domain.Float(lat), domain.Float(lon)),
		domain.NewPlace("MBEB – Fourth Floor Restroom", "Close to the Executive Education Classroom and MBA program offices.", domain.Float(lat), domain.Float(lon)),
	}
}

func numbered(n int) []domain.Place {
	out := make([]domain.Place, n)
	for i := range out {
		out[i] = domain.NewPlace(fmt.Sprintf("Restroom %d", i+1), "", domain.Float(43.6+float64(i)/1000), domain.Float(-116.2))
	}
	return out
}

func uniqueIDs(places []domain.Place) map[string]struct{} {
	ids := make(map[string]struct{}, len(places))
	for _, p := range places {
		ids[p.ID] = struct{}{}
	}
	return ids
}
