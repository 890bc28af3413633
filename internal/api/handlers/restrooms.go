package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"pitstop-service/internal/api/dto"
	"pitstop-service/internal/domain"
	"pitstop-service/internal/ports"
)

// RestroomHandler exposes read-only restroom listing endpoints.
type RestroomHandler struct {
	Store ports.RestroomStore
}

// List returns every stored restroom in the canonical flat shape.
func (h *RestroomHandler) List(w http.ResponseWriter, r *http.Request) {
	places, ok := h.listAll(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromPlaces(places))
}

// GeoJSON returns mappable restrooms as a FeatureCollection of points.
// Places without coordinates are left out.
func (h *RestroomHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	places, ok := h.listAll(w, r)
	if !ok {
		return
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(places))}
	for _, p := range places {
		c, ok := p.Coordinates()
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.ID,
			Geometry: geom.NewPoint(geom.XY).MustSetCoords(geom.Coord(c.CoordsToList())),
			Properties: map[string]any{
				"name":        p.Name,
				"description": p.Description,
			},
		})
	}

	w.Header().Set("Content-Type", "application/geo+json")
	body, err := fc.MarshalJSON()
	if err != nil {
		zap.L().Error("encode geojson failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *RestroomHandler) listAll(w http.ResponseWriter, r *http.Request) ([]domain.Place, bool) {
	places, err := h.Store.ListAll(r.Context())
	if err != nil {
		zap.L().Error("list restrooms failed",
			zap.String("component", "api.restrooms"),
			zap.String("req_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return places, true
}
