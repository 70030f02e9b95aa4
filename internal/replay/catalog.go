package replay

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed units.yaml
var unitsYAML []byte

// UnitType is a catalog entry: what a unit costs and which classes it belongs to.
type UnitType struct {
	Minerals int      `yaml:"minerals"`
	Vespene  int      `yaml:"vespene"`
	Class    []string `yaml:"class"`
}

func (t UnitType) has(class string) bool {
	for _, c := range t.Class {
		if c == class {
			return true
		}
	}
	return false
}

// Catalog maps unit type names to their cost and classes.
type Catalog map[string]UnitType

// DefaultCatalog parses the embedded unit table.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(unitsYAML)
}

// ParseCatalog parses a YAML unit table.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse unit catalog: %w", err)
	}
	for name, t := range c {
		for _, cl := range t.Class {
			switch cl {
			case "army", "worker", "building":
			default:
				return nil, fmt.Errorf("unit %s: unknown class %q", name, cl)
			}
		}
	}
	return c, nil
}

// NewUnit builds a Unit of the named type, or nil if the type is not catalogued.
func (c Catalog) NewUnit(name string) *Unit {
	t, ok := c[name]
	if !ok {
		return nil
	}
	return &Unit{
		Name:       name,
		Minerals:   t.Minerals,
		Vespene:    t.Vespene,
		IsArmy:     t.has("army"),
		IsWorker:   t.has("worker"),
		IsBuilding: t.has("building"),
	}
}

// Morph switches u to the named type, taking over its cost and classes.
// It reports false and leaves u untouched if the type is not catalogued.
func (c Catalog) Morph(u *Unit, name string) bool {
	t, ok := c[name]
	if !ok {
		return false
	}
	u.Name = name
	u.Minerals, u.Vespene = t.Minerals, t.Vespene
	u.IsArmy = t.has("army")
	u.IsWorker = t.has("worker")
	u.IsBuilding = t.has("building")
	return true
}
