package cost

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BaselineRegionID names the built-in region with every multiplier at 1.0.
const BaselineRegionID = "baseline"

// Sentinel errors.
var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrInvalidRegion = errors.New("invalid region")
)

// UnknownRegionError reports a cost request for an unregistered region.
type UnknownRegionError struct {
	RegionID string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.RegionID)
}

func (e *UnknownRegionError) Is(target error) bool { return target == ErrUnknownRegion }

// Region is a named set of pricing multipliers. Equipment cost has no
// multiplier and is never regionally adjusted.
type Region struct {
	ID                 string  `yaml:"id" json:"id"`
	Name               string  `yaml:"name,omitempty" json:"name,omitempty"`
	LaborMultiplier    float64 `yaml:"labor_multiplier" json:"laborMultiplier"`
	MaterialMultiplier float64 `yaml:"material_multiplier" json:"materialMultiplier"`
	PermitMultiplier   float64 `yaml:"permit_multiplier" json:"permitMultiplier"`
}

// Baseline returns the built-in unadjusted region.
func Baseline() Region {
	return Region{
		ID:                 BaselineRegionID,
		Name:               "Baseline (unadjusted)",
		LaborMultiplier:    1,
		MaterialMultiplier: 1,
		PermitMultiplier:   1,
	}
}

// Validate checks the region id and that every multiplier is positive.
func (r Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRegion)
	}
	multipliers := []struct {
		name  string
		value float64
	}{
		{"labor_multiplier", r.LaborMultiplier},
		{"material_multiplier", r.MaterialMultiplier},
		{"permit_multiplier", r.PermitMultiplier},
	}
	for _, m := range multipliers {
		if !(m.value > 0) {
			return fmt.Errorf("%w: region %q: %s must be > 0, got %v", ErrInvalidRegion, r.ID, m.name, m.value)
		}
	}
	return nil
}

// Catalog is a registry of regions keyed by id.
type Catalog struct {
	regions map[string]Region
}

// NewCatalog builds a catalog holding the baseline region plus the given
// regions. A region with the baseline id replaces the built-in one.
func NewCatalog(regions ...Region) (*Catalog, error) {
	c := &Catalog{regions: map[string]Region{BaselineRegionID: Baseline()}}
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate region id %q", ErrInvalidRegion, r.ID)
		}
		seen[r.ID] = true
		c.regions[r.ID] = r
	}
	return c, nil
}

type catalogFile struct {
	Regions []Region `yaml:"regions"`
}

// LoadCatalog reads a YAML region catalog of the form
//
//	regions:
//	  - id: toronto
//	    labor_multiplier: 1.15
//	    material_multiplier: 1.05
//	    permit_multiplier: 1.2
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog bytes. See LoadCatalog for the format.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse region catalog: %w", err)
	}
	return NewCatalog(f.Regions...)
}

// Lookup returns the region with the given id.
func (c *Catalog) Lookup(id string) (Region, error) {
	r, ok := c.regions[id]
	if !ok {
		return Region{}, &UnknownRegionError{RegionID: id}
	}
	return r, nil
}

// Regions returns every region sorted by id.
func (c *Catalog) Regions() []Region {
	out := make([]Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
