// Package targets loads ordered query-target lists from YAML.
package targets

import (
	"embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"pitstop-service/internal/domain"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// File is the on-disk layout of a target list.
type File struct {
	Targets []Entry `yaml:"targets"`
}

// Entry names either a place (Name) or an area (BBox), never both.
type Entry struct {
	Label string              `yaml:"label,omitempty"`
	Name  string              `yaml:"name,omitempty"`
	BBox  *domain.BoundingBox `yaml:"bbox,omitempty"`
}

// Load reads a target list from path.
func Load(path string) ([]domain.QueryTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "targets: read %q", path)
	}

	targets, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "targets: %q", path)
	}
	return targets, nil
}

// Parse decodes and validates a target list, keeping file order.
func Parse(data []byte) ([]domain.QueryTarget, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "parse yaml")
	}

	out := make([]domain.QueryTarget, 0, len(f.Targets))
	for i, e := range f.Targets {
		t, err := e.target()
		if err != nil {
			return nil, eris.Wrapf(err, "entry %d", i+1)
		}
		out = append(out, t)
	}
	return out, nil
}

func (e Entry) target() (domain.QueryTarget, error) {
	name := strings.TrimSpace(e.Name)

	var t domain.QueryTarget
	switch {
	case name != "" && e.BBox != nil:
		return t, eris.New("name and bbox are mutually exclusive")
	case e.BBox != nil:
		t = domain.BoxTarget(e.Label, *e.BBox)
	case name != "":
		t = domain.NameTarget(name)
		if e.Label != "" {
			t.Label = e.Label
		}
	default:
		return t, eris.New("one of name or bbox is required")
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Default returns the built-in target list for a source: the Boise bounding
// box for overpass, the Idaho city list otherwise.
func Default(source string) ([]domain.QueryTarget, error) {
	file := "defaults/idaho-cities.yaml"
	if source == "overpass" || source == "osm" {
		file = "defaults/boise-bbox.yaml"
	}

	data, err := defaultsFS.ReadFile(file)
	if err != nil {
		return nil, eris.Wrapf(err, "targets: read embedded %s", file)
	}
	return Parse(data)
}
