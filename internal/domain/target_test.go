package domain

import "testing"

func TestQueryTargetValidate(t *testing.T) {
	boise := BoundingBox{South: 43.5, West: -116.4, North: 43.7, East: -116.05}

	valid := []QueryTarget{
		BoxTarget("boise", boise),
		NameTarget("Boise"),
	}
	for _, tg := range valid {
		if err := tg.Validate(); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", tg, err)
		}
	}

	invalid := []QueryTarget{
		NameTarget("   "),
		BoxTarget("flipped", BoundingBox{South: 43.7, West: -116.4, North: 43.5, East: -116.05}),
		BoxTarget("west of east", BoundingBox{South: 43.5, West: -116.0, North: 43.7, East: -116.4}),
		BoxTarget("out of range", BoundingBox{South: -95, West: 0, North: 0, East: 1}),
		{Label: "zero"},
	}
	for _, tg := range invalid {
		if err := tg.Validate(); err == nil {
			t.Errorf("Validate(%s) = nil, want error", tg)
		}
	}
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{South: 43.5, West: -116.4, North: 43.7, East: -116.05}

	if !box.Contains(Coordinates{Lat: 43.6035, Lon: -116.2020}) {
		t.Fatalf("expected MBEB inside Boise box")
	}
	if box.Contains(Coordinates{Lat: 47.6, Lon: -116.2}) {
		t.Fatalf("expected Coeur d'Alene outside Boise box")
	}
}
