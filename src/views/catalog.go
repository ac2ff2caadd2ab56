// Package views turns backend statistics into chart specs. Each view is a
// declarative record: which endpoint to fetch, how to read its payload and how
// the resulting chart should look.
package views

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Shape names the payload layout a view expects.
type Shape string

const (
	ShapeSeries     Shape = "series"
	ShapeDatasets   Shape = "datasets"
	ShapeMatrix     Shape = "matrix"
	ShapeGenreTrend Shape = "genre_trend"
)

type AxisConfig struct {
	Title       string   `yaml:"title"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	BeginAtZero bool     `yaml:"begin_at_zero"`
	Stacked     bool     `yaml:"stacked"`
}

func (a AxisConfig) axis() types.Axis {
	return types.Axis{Title: a.Title, Min: a.Min, Max: a.Max, BeginAtZero: a.BeginAtZero, Stacked: a.Stacked}
}

// SeriesConfig maps one numeric payload field to a dataset.
type SeriesConfig struct {
	Field  string          `yaml:"field"`
	Label  string          `yaml:"label"`
	Kind   types.ChartKind `yaml:"kind"`
	Axis   string          `yaml:"axis"`
	Color  string          `yaml:"color"`
	Dashed bool            `yaml:"dashed"`
	Stack  string          `yaml:"stack"`
}

type View struct {
	Slot      string               `yaml:"slot"`
	Section   types.Section        `yaml:"section"`
	Endpoint  string               `yaml:"endpoint"`
	Title     string               `yaml:"title"`
	Hint      string               `yaml:"hint"`
	Kind      types.ChartKind      `yaml:"kind"`
	Shape     Shape                `yaml:"shape"`
	Labels    string               `yaml:"labels"`
	Names     string               `yaml:"names"`
	Data      string               `yaml:"data"`
	Series    []SeriesConfig       `yaml:"series"`
	AxisIDs   map[string]string    `yaml:"axis_ids"`
	Palette   string               `yaml:"palette"`
	LineColor string               `yaml:"line_color"`
	Top       int                  `yaml:"top"`
	XTitle    string               `yaml:"x_title"`
	XRotate   float64              `yaml:"x_rotate"`
	Legend    types.LegendPosition `yaml:"legend"`
	Primary   AxisConfig           `yaml:"primary"`
	Secondary *AxisConfig          `yaml:"secondary"`
}

// Catalog returns the built-in views.
func Catalog() ([]View, error) { return ParseCatalog(builtinCatalog) }

// LoadCatalog reads views from path; an empty path returns the built-in catalog.
func LoadCatalog(path string) ([]View, error) {
	if strings.TrimSpace(path) == "" {
		return Catalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vs, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vs, nil
}

func ParseCatalog(data []byte) ([]View, error) {
	var vs []View
	if err := yaml.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	for i := range vs {
		vs[i].applyDefaults()
	}
	if err := Validate(vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func (v *View) applyDefaults() {
	if v.Kind == "" {
		v.Kind = types.KindBar
	}
	if v.Shape == ShapeGenreTrend && v.Top <= 0 {
		v.Top = 12
	}
	if v.Legend == "" {
		v.Legend = types.LegendTop
	}
}

// Validate checks every view and that slot ids are unique.
func Validate(vs []View) error {
	var errs []error
	slots := lo.Map(vs, func(v View, _ int) string { return v.Slot })
	if dup := lo.FindDuplicates(slots); len(dup) > 0 {
		errs = append(errs, fmt.Errorf("duplicate slots: %s", strings.Join(dup, ", ")))
	}
	for _, v := range vs {
		if err := v.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v View) validate() error {
	fail := func(format string, a ...any) error {
		return fmt.Errorf("view %q: %s", v.Slot, fmt.Sprintf(format, a...))
	}
	if v.Slot == "" {
		return fail("slot is empty")
	}
	if _, ok := types.ParseSection(string(v.Section)); !ok {
		return fail("unknown section %q", v.Section)
	}
	if !strings.HasPrefix(v.Endpoint, "/") {
		return fail("endpoint %q must start with /", v.Endpoint)
	}
	if v.Kind != types.KindBar && v.Kind != types.KindLine {
		return fail("unknown kind %q", v.Kind)
	}
	switch v.Legend {
	case types.LegendTop, types.LegendBottom, types.LegendNone:
	default:
		return fail("unknown legend position %q", v.Legend)
	}
	if v.Palette != "" {
		if _, ok := palettes[v.Palette]; !ok {
			return fail("unknown palette %q", v.Palette)
		}
	}
	switch v.Shape {
	case ShapeSeries:
		if v.Labels == "" || len(v.Series) == 0 {
			return fail("series shape needs labels and at least one series")
		}
		for _, s := range v.Series {
			if s.Field == "" {
				return fail("series entry without field")
			}
			if s.Kind != "" && s.Kind != types.KindBar && s.Kind != types.KindLine {
				return fail("series %s: unknown kind %q", s.Field, s.Kind)
			}
			id, err := axisID(s.Axis)
			if err != nil {
				return fail("series %s: %v", s.Field, err)
			}
			if id == types.AxisSecondary && v.Secondary == nil {
				return fail("series %s uses the secondary axis but none is configured", s.Field)
			}
		}
	case ShapeDatasets:
		if v.Labels == "" || v.Data == "" {
			return fail("datasets shape needs labels and data fields")
		}
		for id, target := range v.AxisIDs {
			a, err := axisID(target)
			if err != nil {
				return fail("axis_ids[%s]: %v", id, err)
			}
			if a == types.AxisSecondary && v.Secondary == nil {
				return fail("axis_ids[%s] maps to the secondary axis but none is configured", id)
			}
		}
	case ShapeMatrix:
		if v.Labels == "" || v.Names == "" || v.Data == "" {
			return fail("matrix shape needs labels, names and data fields")
		}
	case ShapeGenreTrend:
		if v.Secondary == nil {
			return fail("genre_trend shape needs a secondary axis for ratings")
		}
	default:
		return fail("unknown shape %q", v.Shape)
	}
	return nil
}

func axisID(s string) (types.AxisID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "left":
		return types.AxisPrimary, nil
	case "secondary", "right":
		return types.AxisSecondary, nil
	}
	return types.AxisPrimary, fmt.Errorf("unknown axis %q", s)
}

// InSection filters vs to one section, preserving order.
func InSection(vs []View, s types.Section) []View {
	return lo.Filter(vs, func(v View, _ int) bool { return v.Section == s })
}

// Find returns the view for slot.
func Find(vs []View, slot string) (View, bool) {
	return lo.Find(vs, func(v View) bool { return v.Slot == slot })
}

// Slots lists the slot ids of vs in order.
func Slots(vs []View) []string {
	return lo.Map(vs, func(v View, _ int) string { return v.Slot })
}
