package domain

import (
	"errors"
	"fmt"
	"strings"
)

type TargetKind int

const (
	TargetBoundingBox TargetKind = iota + 1
	TargetPlaceName
)

func (k TargetKind) String() string {
	switch k {
	case TargetBoundingBox:
		return "bbox"
	case TargetPlaceName:
		return "name"
	default:
		return "unknown"
	}
}

// QueryTarget is one unit of work for a place source: either a bounding box
// or a free-text place name such as a city.
type QueryTarget struct {
	Kind  TargetKind
	Label string
	Box   BoundingBox
	Name  string
}

func BoxTarget(label string, box BoundingBox) QueryTarget {
	return QueryTarget{Kind: TargetBoundingBox, Label: label, Box: box}
}

func NameTarget(name string) QueryTarget {
	name = strings.TrimSpace(name)
	return QueryTarget{Kind: TargetPlaceName, Label: name, Name: name}
}

func (t QueryTarget) Validate() error {
	switch t.Kind {
	case TargetBoundingBox:
		return t.Box.Validate()
	case TargetPlaceName:
		if strings.TrimSpace(t.Name) == "" {
			return errors.New("query target: place name must not be empty")
		}
		return nil
	default:
		return fmt.Errorf("query target %q: unknown kind %d", t.Label, t.Kind)
	}
}

func (t QueryTarget) String() string {
	if t.Label != "" {
		return t.Label
	}
	if t.Kind == TargetBoundingBox {
		return t.Box.String()
	}
	return t.Name
}
