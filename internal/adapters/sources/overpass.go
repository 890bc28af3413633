package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
)

const defaultOverpassURL = "https://overpass-api.de"

// OverpassSource queries OpenStreetMap for amenity=toilets features. A
// query returns every match in a single response.
type OverpassSource struct {
	baseURL     string
	timeoutSecs int
	includeWays bool
	client      *httpClient
}

// OverpassConfig holds Overpass-specific settings.
type OverpassConfig struct {
	// TimeoutSecs is the server-side [timeout:] budget of the QL query.
	TimeoutSecs int
	// IncludeWays also matches toilets mapped as building outlines.
	IncludeWays bool
}

func NewOverpassSource(cfg OverpassConfig, opts ...Option) *OverpassSource {
	s := newSettings(defaultOverpassURL, opts)
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 25
	}

	return &OverpassSource{
		baseURL:     strings.TrimRight(s.baseURL, "/"),
		timeoutSecs: cfg.TimeoutSecs,
		includeWays: cfg.IncludeWays,
		client:      s.client("overpass"),
	}
}

func (o *OverpassSource) Name() string { return "overpass" }

// Search runs one Overpass query for target.
func (o *OverpassSource) Search(ctx context.Context, target domain.QueryTarget) domain.SearchResult {
	var err error
	defer obs.Time(ctx, "overpass.search")(&err)

	if err = target.Validate(); err != nil {
		return domain.SearchResult{Target: target, Err: err}
	}

	res := collect(ctx, o.Name(), target, o.Stream(o.buildQuery(target)), overpassFields)
	err = res.Err
	return res
}

// Stream returns a single-page record stream for a raw QL query.
func (o *OverpassSource) Stream(query string) *RecordStream {
	fetch := func(ctx context.Context, _ string) (Page, error) {
		body, err := o.client.fetch(ctx, "interpreter", func() (*http.Request, error) {
			form := url.Values{"data": {query}}
			return o.client.newRequest(
				ctx,
				http.MethodPost,
				o.baseURL+"/api/interpreter",
				strings.NewReader(form.Encode()),
				"application/x-www-form-urlencoded",
			)
		})
		if err != nil {
			return Page{}, err
		}

		if !gjson.ValidBytes(body) {
			return Page{}, &RejectedError{Source: "overpass", Status: "INVALID_BODY", Message: truncate(string(body), 256)}
		}
		if remark := gjson.GetBytes(body, "remark"); remark.Exists() && strings.Contains(remark.Str, "error") {
			return Page{}, &RejectedError{Source: "overpass", Status: "REMARK", Message: remark.Str}
		}

		return Page{Records: gjson.GetBytes(body, "elements").Array()}, nil
	}

	return newRecordStream(fetch, 1, 0, nil)
}

func (o *OverpassSource) buildQuery(target domain.QueryTarget) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", o.timeoutSecs)

	var filter string
	switch target.Kind {
	case domain.TargetBoundingBox:
		filter = fmt.Sprintf("(%s,%s,%s,%s)",
			coord(target.Box.South), coord(target.Box.West),
			coord(target.Box.North), coord(target.Box.East))
	case domain.TargetPlaceName:
		fmt.Fprintf(&b, "area[\"name\"=%s]->.searchArea;\n", strconv.Quote(target.Name))
		filter = "(area.searchArea)"
	}

	b.WriteString("(\n")
	fmt.Fprintf(&b, "  node[\"amenity\"=\"toilets\"]%s;\n", filter)
	if o.includeWays {
		fmt.Fprintf(&b, "  way[\"amenity\"=\"toilets\"]%s;\n", filter)
	}
	b.WriteString(");\n")
	b.WriteString("out body center;")

	return b.String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
