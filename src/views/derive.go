package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/iafilius/MediaTrendsDashboard/src/statsapi"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// Derive validates payload against the view's shape and builds the chart spec.
// Shape problems are returned as *statsapi.ShapeError.
func Derive(v View, p statsapi.Payload) (types.Spec, error) {
	spec := types.Spec{
		Kind:    v.Kind,
		Title:   v.Title,
		Hint:    v.Hint,
		XTitle:  v.XTitle,
		XRotate: v.XRotate,
		Primary: v.Primary.axis(),
		Legend:  v.Legend,
	}
	if v.Secondary != nil {
		ax := v.Secondary.axis()
		spec.Secondary = &ax
	}
	var err error
	switch v.Shape {
	case ShapeSeries:
		spec.Labels, spec.Datasets, err = deriveSeries(v, p)
	case ShapeDatasets:
		spec.Labels, spec.Datasets, err = deriveDatasets(v, p)
	case ShapeMatrix:
		spec.Labels, spec.Datasets, err = deriveMatrix(v, p)
	case ShapeGenreTrend:
		spec.Labels, spec.Datasets, err = deriveGenreTrend(v, p)
	default:
		err = fmt.Errorf("unknown shape %q", v.Shape)
	}
	if err != nil {
		var se *statsapi.ShapeError
		if errors.As(err, &se) {
			if se.Endpoint == "" {
				se.Endpoint = v.Endpoint
			}
			return types.Spec{}, se
		}
		return types.Spec{}, &statsapi.ShapeError{Endpoint: v.Endpoint, Err: err}
	}
	if len(spec.Labels) == 0 {
		return types.Spec{}, &statsapi.ShapeError{Endpoint: v.Endpoint, Field: v.Labels, Reason: "no labels"}
	}
	return spec, nil
}

func lengthMismatch(field string, got, want int) error {
	return &statsapi.ShapeError{Field: field, Reason: fmt.Sprintf("%d values for %d labels", got, want)}
}

func deriveSeries(v View, p statsapi.Payload) ([]string, []types.Dataset, error) {
	labels, err := p.Strings(v.Labels)
	if err != nil {
		return nil, nil, err
	}
	out := make([]types.Dataset, 0, len(v.Series))
	for _, s := range v.Series {
		vals, err := p.Floats(s.Field)
		if err != nil {
			return nil, nil, err
		}
		if len(vals) != len(labels) {
			return nil, nil, lengthMismatch(s.Field, len(vals), len(labels))
		}
		axis, err := axisID(s.Axis)
		if err != nil {
			return nil, nil, err
		}
		label := s.Label
		if label == "" {
			label = s.Field
		}
		out = append(out, types.Dataset{
			Label:  label,
			Values: vals,
			Kind:   s.Kind,
			Axis:   axis,
			Color:  s.Color,
			Dashed: s.Dashed,
			Stack:  s.Stack,
		})
	}
	return labels, out, nil
}

// backendDataset is the dataset record some endpoints ship ready-made.
type backendDataset struct {
	Label       string          `json:"label"`
	Data        json.RawMessage `json:"data"`
	Type        string          `json:"type"`
	YAxisID     string          `json:"yAxisID"`
	Stack       string          `json:"stack"`
	BorderColor string          `json:"borderColor"`
}

func deriveDatasets(v View, p statsapi.Payload) ([]string, []types.Dataset, error) {
	labels, err := p.Strings(v.Labels)
	if err != nil {
		return nil, nil, err
	}
	var raw []backendDataset
	if err := p.Decode(v.Data, &raw); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, &statsapi.ShapeError{Field: v.Data, Reason: "no datasets"}
	}
	out := make([]types.Dataset, 0, len(raw))
	for i, d := range raw {
		field := fmt.Sprintf("%s[%d]", v.Data, i)
		vals, err := statsapi.ParseNumbers(d.Data)
		if err != nil {
			return nil, nil, &statsapi.ShapeError{Field: field + ".data", Reason: "not a numeric array", Err: err}
		}
		if len(vals) != len(labels) {
			return nil, nil, lengthMismatch(field, len(vals), len(labels))
		}
		ds := types.Dataset{Label: d.Label, Values: vals, Stack: d.Stack}
		switch d.Type {
		case "", "bar":
			ds.Kind = types.KindBar
			ds.Color = paletteColor(v.Palette, i)
		case "line":
			ds.Kind = types.KindLine
			ds.Color = lo.CoalesceOrEmpty(v.LineColor, d.BorderColor, paletteColor(v.Palette, i))
		default:
			return nil, nil, &statsapi.ShapeError{Field: field + ".type", Reason: fmt.Sprintf("unsupported type %q", d.Type)}
		}
		if d.YAxisID != "" {
			target, ok := v.AxisIDs[d.YAxisID]
			if !ok {
				return nil, nil, &statsapi.ShapeError{Field: field + ".yAxisID", Reason: fmt.Sprintf("unknown axis id %q", d.YAxisID)}
			}
			ds.Axis, err = axisID(target)
			if err != nil {
				return nil, nil, err
			}
		}
		out = append(out, ds)
	}
	return labels, out, nil
}

func deriveMatrix(v View, p statsapi.Payload) ([]string, []types.Dataset, error) {
	labels, err := p.Strings(v.Labels)
	if err != nil {
		return nil, nil, err
	}
	names, err := p.Strings(v.Names)
	if err != nil {
		return nil, nil, err
	}
	rows, err := p.Matrix(v.Data)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) != len(names) {
		return nil, nil, &statsapi.ShapeError{Field: v.Data, Reason: fmt.Sprintf("%d rows for %d %s", len(rows), len(names), v.Names)}
	}
	if len(rows) == 0 {
		return nil, nil, &statsapi.ShapeError{Field: v.Data, Reason: "no rows"}
	}
	out := make([]types.Dataset, len(rows))
	for i, row := range rows {
		if len(row) != len(labels) {
			return nil, nil, lengthMismatch(fmt.Sprintf("%s[%d]", v.Data, i), len(row), len(labels))
		}
		out[i] = types.Dataset{Label: names[i], Values: row, Color: paletteColor(v.Palette, i)}
	}
	return labels, out, nil
}

type genreSeries struct {
	years   []float64
	counts  []float64
	ratings []float64
	total   float64
}

func deriveGenreTrend(v View, p statsapi.Payload) ([]string, []types.Dataset, error) {
	trends := make(map[string]genreSeries, len(p))
	for _, genre := range p.Keys() {
		var rec struct {
			Years   json.RawMessage `json:"years"`
			Counts  json.RawMessage `json:"counts"`
			Ratings json.RawMessage `json:"ratings"`
		}
		if err := p.Decode(genre, &rec); err != nil {
			return nil, nil, err
		}
		var gs genreSeries
		var err error
		if gs.years, err = statsapi.ParseNumbers(rec.Years); err != nil {
			return nil, nil, &statsapi.ShapeError{Field: genre + ".years", Reason: "not a numeric array", Err: err}
		}
		if gs.counts, err = statsapi.ParseNumbers(rec.Counts); err != nil {
			return nil, nil, &statsapi.ShapeError{Field: genre + ".counts", Reason: "not a numeric array", Err: err}
		}
		if gs.ratings, err = statsapi.ParseNumbers(rec.Ratings); err != nil {
			return nil, nil, &statsapi.ShapeError{Field: genre + ".ratings", Reason: "not a numeric array", Err: err}
		}
		if len(gs.counts) != len(gs.years) || len(gs.ratings) != len(gs.years) {
			return nil, nil, &statsapi.ShapeError{Field: genre, Reason: "years, counts and ratings differ in length"}
		}
		if lo.SomeBy(gs.years, math.IsNaN) {
			return nil, nil, &statsapi.ShapeError{Field: genre + ".years", Reason: "null year"}
		}
		gs.total = lo.SumBy(gs.counts, func(c float64) float64 {
			if math.IsNaN(c) {
				return 0
			}
			return c
		})
		trends[genre] = gs
	}
	if len(trends) == 0 {
		return nil, nil, &statsapi.ShapeError{Reason: "no genres"}
	}

	genres := lo.Keys(trends)
	sort.SliceStable(genres, func(i, j int) bool {
		ti, tj := trends[genres[i]].total, trends[genres[j]].total
		if ti != tj {
			return ti > tj
		}
		return genres[i] < genres[j]
	})
	if len(genres) > v.Top {
		genres = genres[:v.Top]
	}

	years := lo.Uniq(lo.FlatMap(genres, func(g string, _ int) []float64 { return trends[g].years }))
	sort.Float64s(years)
	labels := lo.Map(years, func(y float64, _ int) string { return strconv.FormatFloat(y, 'f', -1, 64) })

	out := make([]types.Dataset, 0, 2*len(genres))
	for i, g := range genres {
		gs := trends[g]
		countAt := make(map[float64]float64, len(gs.years))
		ratingAt := make(map[float64]float64, len(gs.years))
		for k, y := range gs.years {
			countAt[y] = gs.counts[k]
			ratingAt[y] = gs.ratings[k]
		}
		counts := make([]float64, len(years))
		ratings := make([]float64, len(years))
		for k, y := range years {
			c, ok := countAt[y]
			if !ok || math.IsNaN(c) {
				c = 0
			}
			counts[k] = c
			r, ok := ratingAt[y]
			if !ok {
				r = math.NaN()
			}
			ratings[k] = r
		}
		color := paletteColor(v.Palette, i)
		out = append(out,
			types.Dataset{Label: g + " - Count", Values: counts, Kind: types.KindLine, Axis: types.AxisPrimary, Color: color},
			types.Dataset{Label: g + " - Rating", Values: ratings, Kind: types.KindLine, Axis: types.AxisSecondary, Color: color, Dashed: true},
		)
	}
	return labels, out, nil
}
