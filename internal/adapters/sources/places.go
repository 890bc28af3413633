package sources

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
)

const (
	defaultPlacesURL      = "https://maps.googleapis.com"
	defaultQueryTemplate  = "public restroom in %s"
	boxQuery              = "public restroom"
	maxSearchRadiusMeters = 50000
)

// PlacesSource pages through a places text-search API. Results arrive in
// pages of up to 20 with an optional next_page_token.
type PlacesSource struct {
	baseURL   string
	apiKey    string
	template  string
	pageDelay time.Duration
	maxPages  int
	client    *httpClient
	sleep     func(context.Context, time.Duration) error
}

// PlacesConfig holds text-search settings. APIKey is required.
type PlacesConfig struct {
	APIKey string
	// QueryTemplate is formatted with the target's place name.
	QueryTemplate string
}

func NewPlacesSource(cfg PlacesConfig, opts ...Option) (*PlacesSource, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("places source: api key is required")
	}
	if cfg.QueryTemplate == "" {
		cfg.QueryTemplate = defaultQueryTemplate
	}
	if !strings.Contains(cfg.QueryTemplate, "%s") {
		return nil, eris.Errorf("places source: query template %q has no %%s verb", cfg.QueryTemplate)
	}

	s := newSettings(defaultPlacesURL, opts)

	return &PlacesSource{
		baseURL:   strings.TrimRight(s.baseURL, "/"),
		apiKey:    cfg.APIKey,
		template:  cfg.QueryTemplate,
		pageDelay: s.pageDelay,
		maxPages:  s.maxPages,
		client:    s.client("places"),
		sleep:     sleepCtx,
	}, nil
}

func (p *PlacesSource) Name() string { return "places" }

// Search walks up to maxPages result pages for target.
func (p *PlacesSource) Search(ctx context.Context, target domain.QueryTarget) domain.SearchResult {
	var err error
	defer obs.Time(ctx, "places.search")(&err)

	if err = target.Validate(); err != nil {
		return domain.SearchResult{Target: target, Err: err}
	}

	res := collect(ctx, p.Name(), target, p.Stream(target), placesFields)
	if target.Kind == domain.TargetBoundingBox {
		res.Places = insideBox(res.Places, target.Box)
	}
	err = res.Err
	return res
}

// insideBox keeps places located within box. The location bias sent with a
// box target does not restrict text search results.
func insideBox(places []domain.Place, box domain.BoundingBox) []domain.Place {
	out := make([]domain.Place, 0, len(places))
	for _, pl := range places {
		if c, ok := pl.Coordinates(); ok && box.Contains(c) {
			out = append(out, pl)
		}
	}
	if dropped := len(places) - len(out); dropped > 0 {
		zap.L().Debug("dropped places outside box",
			zap.String("component", "sources.places"),
			zap.Stringer("box", box),
			zap.Int("dropped", dropped),
		)
	}
	return out
}

// Stream returns the lazy page stream for target.
func (p *PlacesSource) Stream(target domain.QueryTarget) *RecordStream {
	params := p.searchParams(target)

	fetch := func(ctx context.Context, token string) (Page, error) {
		body, err := p.client.fetch(ctx, "textsearch", func() (*http.Request, error) {
			req, err := p.client.newRequest(ctx, http.MethodGet, p.baseURL+"/maps/api/place/textsearch/json", nil, "")
			if err != nil {
				return nil, err
			}

			q := req.URL.Query()
			for k, v := range params {
				q.Set(k, v)
			}
			q.Set("key", p.apiKey)
			if token != "" {
				q.Set("pagetoken", token)
			}
			req.URL.RawQuery = q.Encode()
			return req, nil
		})
		if err != nil {
			return Page{}, err
		}

		return parsePlacesPage(body)
	}

	return newRecordStream(fetch, p.maxPages, p.pageDelay, p.sleep)
}

func (p *PlacesSource) searchParams(target domain.QueryTarget) map[string]string {
	if target.Kind == domain.TargetBoundingBox {
		lat, lon, radius := circleAround(target.Box)
		return map[string]string{
			"query":    boxQuery,
			"location": fmt.Sprintf("%.6f,%.6f", lat, lon),
			"radius":   fmt.Sprintf("%d", radius),
		}
	}
	return map[string]string{"query": fmt.Sprintf(p.template, target.Name)}
}

func parsePlacesPage(body []byte) (Page, error) {
	if !gjson.ValidBytes(body) {
		return Page{}, &RejectedError{Source: "places", Status: "INVALID_BODY", Message: truncate(string(body), 256)}
	}

	status := gjson.GetBytes(body, "status").Str
	switch status {
	case "OK":
	case "ZERO_RESULTS":
		return Page{}, nil
	default:
		return Page{}, &RejectedError{
			Source:  "places",
			Status:  status,
			Message: gjson.GetBytes(body, "error_message").Str,
		}
	}

	return Page{
		Records:   gjson.GetBytes(body, "results").Array(),
		NextToken: gjson.GetBytes(body, "next_page_token").Str,
	}, nil
}

// circleAround returns the box center and the radius in meters reaching its
// corners, capped at the API maximum.
func circleAround(b domain.BoundingBox) (lat, lon float64, radius int) {
	lat = (b.South + b.North) / 2
	lon = (b.West + b.East) / 2

	r := haversineMeters(lat, lon, b.North, b.East)
	if r > maxSearchRadiusMeters {
		r = maxSearchRadiusMeters
	}
	return lat, lon, int(math.Ceil(r))
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0

	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}
