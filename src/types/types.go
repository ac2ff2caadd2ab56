package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ChartKind selects how a chart, or a single dataset inside it, is drawn.
type ChartKind string

const (
	KindBar  ChartKind = "bar"
	KindLine ChartKind = "line"
)

func (k ChartKind) valid() bool { return k == KindBar || k == KindLine }

// AxisID binds a dataset to one of the two value axes.
type AxisID int

const (
	AxisPrimary   AxisID = iota // left
	AxisSecondary               // right
)

// LegendPosition places the legend relative to the plot area.
type LegendPosition string

const (
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
	LegendNone   LegendPosition = "none"
)

// Axis describes one value axis. Nil Min/Max means "derive from data".
type Axis struct {
	Title       string
	Min         *float64
	Max         *float64
	BeginAtZero bool
	Stacked     bool
}

// Dataset is one series of a chart. Values align index-for-index with Spec.Labels;
// NaN marks a missing (null) value.
type Dataset struct {
	Label  string
	Values []float64
	Kind   ChartKind // empty inherits Spec.Kind
	Axis   AxisID
	Color  string
	Dashed bool
	Stack  string
}

// Spec is the fully derived, library-agnostic description of a chart.
type Spec struct {
	Kind      ChartKind
	Title     string
	Hint      string
	Labels    []string
	Datasets  []Dataset
	XTitle    string
	XRotate   float64
	Primary   Axis
	Secondary *Axis
	Legend    LegendPosition
}

// ErrInvalidSpec wraps every validation failure of a Spec.
var ErrInvalidSpec = errors.New("invalid chart spec")

// Validate checks the structural invariants a renderer relies on.
func (s Spec) Validate() error {
	if !s.Kind.valid() {
		return fmt.Errorf("%w: unknown chart kind %q", ErrInvalidSpec, s.Kind)
	}
	if len(s.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidSpec)
	}
	if len(s.Datasets) == 0 {
		return fmt.Errorf("%w: no datasets", ErrInvalidSpec)
	}
	for i, d := range s.Datasets {
		if d.Kind != "" && !d.Kind.valid() {
			return fmt.Errorf("%w: dataset %d (%s): unknown kind %q", ErrInvalidSpec, i, d.Label, d.Kind)
		}
		if len(d.Values) != len(s.Labels) {
			return fmt.Errorf("%w: dataset %d (%s): %d values for %d labels", ErrInvalidSpec, i, d.Label, len(d.Values), len(s.Labels))
		}
		if d.Axis == AxisSecondary && s.Secondary == nil {
			return fmt.Errorf("%w: dataset %d (%s) uses the secondary axis but none is configured", ErrInvalidSpec, i, d.Label)
		}
	}
	return nil
}

// DatasetKind resolves the effective kind of dataset i.
func (s Spec) DatasetKind(i int) ChartKind {
	if i < 0 || i >= len(s.Datasets) || s.Datasets[i].Kind == "" {
		return s.Kind
	}
	return s.Datasets[i].Kind
}

// HasSecondary reports whether any dataset is bound to the secondary axis.
func (s Spec) HasSecondary() bool {
	for _, d := range s.Datasets {
		if d.Axis == AxisSecondary {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for Axis.Min/Max literals.
func Float(v float64) *float64 { return &v }

// Null is the missing-value marker used in Dataset.Values.
func Null() float64 { return math.NaN() }

// Section names one page region. Exactly one is active at a time.
type Section string

const (
	SectionAnime    Section = "anime"
	SectionMovie    Section = "movie"
	SectionGame     Section = "game"
	SectionCombined Section = "combined"
)

// AllSections returns the sections in navigation order.
func AllSections() []Section {
	return []Section{SectionAnime, SectionMovie, SectionGame, SectionCombined}
}

// Title is the human label used in navigation.
func (s Section) Title() string {
	switch s {
	case SectionAnime:
		return "Anime"
	case SectionMovie:
		return "Movies"
	case SectionGame:
		return "Games"
	case SectionCombined:
		return "Combined"
	}
	return string(s)
}

// ParseSection accepts a section name case-insensitively.
func ParseSection(s string) (Section, bool) {
	v := Section(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSections() {
		if v == known {
			return v, true
		}
	}
	return "", false
}
