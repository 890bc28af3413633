package dto

import "pitstop-service/internal/domain"

// RestroomResponse is the canonical wire shape of a place. Lat and Lon are
// null when the place has no coordinates.
type RestroomResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

func FromPlace(p domain.Place) RestroomResponse {
	return RestroomResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Lat:         p.Lat,
		Lon:         p.Lon,
	}
}

// FromPlaces never returns nil so an empty store encodes as [].
func FromPlaces(places []domain.Place) []RestroomResponse {
	out := make([]RestroomResponse, 0, len(places))
	for _, p := range places {
		out = append(out, FromPlace(p))
	}
	return out
}
