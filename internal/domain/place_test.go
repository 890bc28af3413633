package domain

import (
	"math"
	"testing"
)

func TestNewPlaceSubstitutesPlaceholders(t *testing.T) {
	cases := []struct {
		name, desc         string
		wantName, wantDesc string
	}{
		{"", "", DefaultName, DefaultDescription},
		{"   ", "\t", DefaultName, DefaultDescription},
		{"Julia Davis Park", "", "Julia Davis Park", DefaultDescription},
		{"", "123 Main St", DefaultName, "123 Main St"},
		{" Library ", " 715 S Capitol Blvd ", "Library", "715 S Capitol Blvd"},
	}

	for _, c := range cases {
		p := NewPlace(c.name, c.desc, nil, nil)
		if p.Name != c.wantName {
			t.Errorf("NewPlace(%q).Name = %q, want %q", c.name, p.Name, c.wantName)
		}
		if p.Description != c.wantDesc {
			t.Errorf("NewPlace(%q).Description = %q, want %q", c.desc, p.Description, c.wantDesc)
		}
	}
}

func TestPlaceMappable(t *testing.T) {
	cases := []struct {
		label string
		lat   *float64
		lon   *float64
		want  bool
	}{
		{"both present", Float(43.6035), Float(-116.2020), true},
		{"missing lat", nil, Float(-116.2020), false},
		{"missing lon", Float(43.6035), nil, false},
		{"missing both", nil, nil, false},
		{"nan", Float(math.NaN()), Float(-116.2020), false},
		{"out of range but present", Float(91), Float(0), true},
		{"zero is a real position", Float(0), Float(0), true},
	}

	for _, c := range cases {
		p := Place{Name: "x", Lat: c.lat, Lon: c.lon}
		if got := p.Mappable(); got != c.want {
			t.Errorf("%s: Mappable() = %v, want %v", c.label, got, c.want)
		}
		if _, ok := p.Coordinates(); ok != c.want {
			t.Errorf("%s: Coordinates() ok = %v, want %v", c.label, ok, c.want)
		}
	}
}

func TestPlaceDedupeKey(t *testing.T) {
	a := Place{Name: "MBEB Restroom", Lat: Float(43.603501), Lon: Float(-116.202001)}
	b := Place{Name: "  mbeb restroom ", Lat: Float(43.603504), Lon: Float(-116.202004)}
	c := Place{Name: "MBEB Restroom", Lat: Float(43.6040), Lon: Float(-116.2020)}

	if a.DedupeKey() != b.DedupeKey() {
		t.Fatalf("expected equal keys for near-identical places")
	}
	if a.DedupeKey() == c.DedupeKey() {
		t.Fatalf("expected different keys for places 60m apart")
	}

	noGeo := Place{Name: "MBEB Restroom"}
	if noGeo.DedupeKey() == a.DedupeKey() {
		t.Fatalf("place without geometry must not collide with a mapped one")
	}
}

func TestSearchResultOutcome(t *testing.T) {
	cause := ErrSourceRejected

	if got := (SearchResult{}).Outcome(); got != OutcomeOK {
		t.Errorf("empty result without error = %v, want ok", got)
	}
	if got := (SearchResult{Places: []Place{{}}, Err: cause}).Outcome(); got != OutcomePartial {
		t.Errorf("records with error = %v, want partial", got)
	}
	if got := (SearchResult{Err: cause}).Outcome(); got != OutcomeFailed {
		t.Errorf("no records with error = %v, want failed", got)
	}
}

func TestCoordinatesInRange(t *testing.T) {
	if !(Coordinates{Lat: 43.6035, Lon: -116.2020}).InRange() {
		t.Errorf("InRange(43.6035,-116.2020) = false, want true")
	}
	if (Coordinates{Lat: 91, Lon: 0}).InRange() {
		t.Errorf("InRange(91,0) = true, want false")
	}
	if (Coordinates{Lat: math.Inf(1), Lon: 0}).Finite() {
		t.Errorf("Finite(+Inf,0) = true, want false")
	}
}
