package types

import (
	"errors"
	"math"
	"testing"
)

func validSpec() Spec {
	return Spec{
		Kind:   KindBar,
		Labels: []string{"2010", "2011"},
		Datasets: []Dataset{
			{Label: "Movies", Values: []float64{5, 9}},
		},
	}
}

func TestSpecValidate(t *testing.T) {
	if err := validSpec().Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	cases := map[string]func(*Spec){
		"unknown kind": func(s *Spec) { s.Kind = "pie" },
		"no labels":    func(s *Spec) { s.Labels = nil },
		"no datasets":  func(s *Spec) { s.Datasets = nil },
		"length":       func(s *Spec) { s.Datasets[0].Values = []float64{1} },
		"dataset kind": func(s *Spec) { s.Datasets[0].Kind = "area" },
		"missing y2":   func(s *Spec) { s.Datasets[0].Axis = AxisSecondary },
	}
	for name, mutate := range cases {
		s := validSpec()
		mutate(&s)
		err := s.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrInvalidSpec) {
			t.Fatalf("%s: error %v does not wrap ErrInvalidSpec", name, err)
		}
	}
}

func TestSpecSecondaryAxisAccepted(t *testing.T) {
	s := validSpec()
	s.Secondary = &Axis{Title: "Rating", Min: Float(0), Max: Float(10)}
	s.Datasets = append(s.Datasets, Dataset{Label: "Rating", Values: []float64{7.1, Null()}, Kind: KindLine, Axis: AxisSecondary})
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasSecondary() {
		t.Fatalf("HasSecondary should be true")
	}
	if s.DatasetKind(0) != KindBar || s.DatasetKind(1) != KindLine {
		t.Fatalf("dataset kinds: %s %s", s.DatasetKind(0), s.DatasetKind(1))
	}
	if !math.IsNaN(s.Datasets[1].Values[1]) {
		t.Fatalf("null marker lost")
	}
}

func TestParseSection(t *testing.T) {
	if s, ok := ParseSection(" Movie "); !ok || s != SectionMovie {
		t.Fatalf("ParseSection movie: %q %v", s, ok)
	}
	if _, ok := ParseSection("music"); ok {
		t.Fatalf("unknown section accepted")
	}
	if len(AllSections()) != 4 {
		t.Fatalf("expected 4 sections")
	}
}
