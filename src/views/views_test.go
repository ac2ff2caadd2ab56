package views

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iafilius/MediaTrendsDashboard/src/statsapi"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

func payload(t *testing.T, js string) statsapi.Payload {
	t.Helper()
	var p statsapi.Payload
	if err := json.Unmarshal([]byte(js), &p); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return p
}

func catalogView(t *testing.T, slot string) View {
	t.Helper()
	vs, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	v, ok := Find(vs, slot)
	if !ok {
		t.Fatalf("view %s not in catalog", slot)
	}
	return v
}

func TestBuiltinCatalog(t *testing.T) {
	vs, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(vs) != 14 {
		t.Fatalf("expected 14 views, got %d", len(vs))
	}
	want := map[types.Section]int{
		types.SectionAnime:    3,
		types.SectionMovie:    3,
		types.SectionGame:     4,
		types.SectionCombined: 4,
	}
	for s, n := range want {
		if got := len(InSection(vs, s)); got != n {
			t.Fatalf("section %s: %d views, want %d", s, got, n)
		}
	}
	trend := catalogView(t, "multiGenreTrendChart")
	if trend.Top != 12 || trend.Legend != types.LegendBottom || trend.Secondary == nil {
		t.Fatalf("genre trend view = %+v", trend)
	}
	if got := Slots(vs); got[0] != "episodeTypeChart" {
		t.Fatalf("catalog order changed: %v", got)
	}
}

func TestParseCatalogRejectsBadViews(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
- {slot: a, section: movie, endpoint: /x, shape: series, labels: l, series: [{field: d}]}
- {slot: a, section: movie, endpoint: /y, shape: series, labels: l, series: [{field: d}]}`,
		"shape":     `- {slot: a, section: movie, endpoint: /x, shape: pie}`,
		"section":   `- {slot: a, section: music, endpoint: /x, shape: series, labels: l, series: [{field: d}]}`,
		"secondary": `- {slot: a, section: movie, endpoint: /x, shape: series, labels: l, series: [{field: d, axis: right}]}`,
		"endpoint":  `- {slot: a, section: movie, endpoint: x, shape: series, labels: l, series: [{field: d}]}`,
		"palette":   `- {slot: a, section: game, endpoint: /x, shape: matrix, labels: y, names: n, data: d, palette: neon}`,
	}
	for name, src := range cases {
		if _, err := ParseCatalog([]byte(src)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDeriveYearSeries(t *testing.T) {
	v := catalogView(t, "movieByYear")
	spec, err := Derive(v, payload(t, `{"labels":["2010","2011"],"data":[5,9]}`))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(spec.Labels) != 2 || spec.Labels[0] != "2010" || spec.Labels[1] != "2011" {
		t.Fatalf("labels = %v", spec.Labels)
	}
	if len(spec.Datasets) != 1 {
		t.Fatalf("datasets = %d", len(spec.Datasets))
	}
	if vals := spec.Datasets[0].Values; vals[0] != 5 || vals[1] != 9 {
		t.Fatalf("values = %v", vals)
	}
	if spec.Kind != types.KindBar || spec.Title != v.Title {
		t.Fatalf("spec header = %q %q", spec.Kind, spec.Title)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("derived spec invalid: %v", err)
	}
}

func TestDeriveShapeErrors(t *testing.T) {
	v := catalogView(t, "movieByYear")
	cases := map[string]string{
		"missing":  `{"labels":["2010","2011"]}`,
		"length":   `{"labels":["2010","2011"],"data":[5]}`,
		"type":     `{"labels":["2010","2011"],"data":"five"}`,
		"nolabels": `{"labels":[],"data":[]}`,
	}
	for name, js := range cases {
		_, err := Derive(v, payload(t, js))
		var se *statsapi.ShapeError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected ShapeError, got %v", name, err)
		}
		if se.Endpoint != v.Endpoint {
			t.Fatalf("%s: endpoint = %q", name, se.Endpoint)
		}
	}
	_, err := Derive(v, payload(t, `{"labels":["2010"]}`))
	if err == nil || !strings.Contains(err.Error(), "field data") {
		t.Fatalf("missing field not named: %v", err)
	}
}

func TestDeriveDatasetsMapsAxesAndColors(t *testing.T) {
	v := catalogView(t, "episodeTypeChart")
	spec, err := Derive(v, payload(t, `{
		"bins": [1, "2-12"],
		"datasets": [
			{"label": "TV", "data": [3, 4], "stack": "stack1", "yAxisID": "left-y"},
			{"label": "OVA", "data": [1, null], "stack": "stack1", "yAxisID": "left-y"},
			{"label": "Total", "data": [4, 4], "type": "line", "yAxisID": "right-y", "borderColor": "red"}
		]}`))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if spec.Labels[0] != "1" || spec.Labels[1] != "2-12" {
		t.Fatalf("labels = %v", spec.Labels)
	}
	tv, ova, total := spec.Datasets[0], spec.Datasets[1], spec.Datasets[2]
	if tv.Kind != types.KindBar || tv.Axis != types.AxisPrimary || tv.Color != "#4e79a7" || tv.Stack != "stack1" {
		t.Fatalf("bar dataset = %+v", tv)
	}
	if ova.Color != "#f28e2b" || !math.IsNaN(ova.Values[1]) {
		t.Fatalf("second bar dataset = %+v", ova)
	}
	if total.Kind != types.KindLine || total.Axis != types.AxisSecondary || total.Color != "black" {
		t.Fatalf("line dataset = %+v", total)
	}
	if !spec.Primary.Stacked || spec.Secondary == nil {
		t.Fatalf("axes = %+v %+v", spec.Primary, spec.Secondary)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("derived spec invalid: %v", err)
	}

	_, err = Derive(v, payload(t, `{"bins":["a"],"datasets":[{"label":"x","data":[1],"yAxisID":"z-axis"}]}`))
	var se *statsapi.ShapeError
	if !errors.As(err, &se) || !strings.Contains(se.Field, "yAxisID") {
		t.Fatalf("unknown axis id: %v", err)
	}
}

func TestDeriveMatrix(t *testing.T) {
	v := catalogView(t, "gamecharttrend")
	spec, err := Derive(v, payload(t, `{"years":[2000,2001],"genres":["Action","RPG"],"data":[[1,2],[3,null]]}`))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if spec.Labels[0] != "2000" || spec.Labels[1] != "2001" {
		t.Fatalf("labels = %v", spec.Labels)
	}
	if len(spec.Datasets) != 2 || spec.Datasets[1].Label != "RPG" || !math.IsNaN(spec.Datasets[1].Values[1]) {
		t.Fatalf("datasets = %+v", spec.Datasets)
	}
	if spec.Datasets[0].Color != "#e6194b" || spec.Kind != types.KindLine {
		t.Fatalf("color/kind = %q %q", spec.Datasets[0].Color, spec.Kind)
	}

	_, err = Derive(v, payload(t, `{"years":[2000],"genres":["Action","RPG"],"data":[[1]]}`))
	var se *statsapi.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("row/name mismatch: %v", err)
	}
	_, err = Derive(v, payload(t, `{"years":[2000,2001],"genres":["Action"],"data":[[1]]}`))
	if !errors.As(err, &se) {
		t.Fatalf("row/label mismatch: %v", err)
	}
}

func TestDeriveGenreTrendTopAndYearUnion(t *testing.T) {
	v := catalogView(t, "multiGenreTrendChart")
	v.Top = 2
	spec, err := Derive(v, payload(t, `{
		"Drama":  {"years": [2001, 2000], "counts": [5, 5], "ratings": [7, 6]},
		"Comedy": {"years": [2000, 2002], "counts": [1, 2], "ratings": [5, null]},
		"Horror": {"years": [2003], "counts": [1], "ratings": [4]}
	}`))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if strings.Join(spec.Labels, ",") != "2000,2001,2002" {
		t.Fatalf("labels = %v", spec.Labels)
	}
	if len(spec.Datasets) != 4 {
		t.Fatalf("datasets = %d", len(spec.Datasets))
	}
	dc, dr, cc, cr := spec.Datasets[0], spec.Datasets[1], spec.Datasets[2], spec.Datasets[3]
	if dc.Label != "Drama - Count" || dr.Label != "Drama - Rating" || cc.Label != "Comedy - Count" {
		t.Fatalf("labels = %q %q %q", dc.Label, dr.Label, cc.Label)
	}
	if dc.Values[0] != 5 || dc.Values[1] != 5 || dc.Values[2] != 0 {
		t.Fatalf("drama counts = %v", dc.Values)
	}
	if dr.Values[0] != 6 || dr.Values[1] != 7 || !math.IsNaN(dr.Values[2]) {
		t.Fatalf("drama ratings = %v", dr.Values)
	}
	if cc.Values[0] != 1 || cc.Values[1] != 0 || cc.Values[2] != 2 {
		t.Fatalf("comedy counts = %v", cc.Values)
	}
	if cr.Values[0] != 5 || !math.IsNaN(cr.Values[1]) || !math.IsNaN(cr.Values[2]) {
		t.Fatalf("comedy ratings = %v", cr.Values)
	}
	if !dr.Dashed || dr.Axis != types.AxisSecondary || dc.Axis != types.AxisPrimary || dr.Color != dc.Color {
		t.Fatalf("rating styling = %+v", dr)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("derived spec invalid: %v", err)
	}

	_, err = Derive(v, payload(t, `{"Drama": {"years": [2000], "counts": [1, 2], "ratings": [7]}}`))
	var se *statsapi.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("ragged genre accepted: %v", err)
	}
}

func TestDeriveGenreTrendRejectsNullYear(t *testing.T) {
	v := catalogView(t, "multiGenreTrendChart")
	_, err := Derive(v, payload(t, `{"Drama": {"years": [2010, null], "counts": [1, 2], "ratings": [7, 8]}}`))
	var se *statsapi.ShapeError
	if !errors.As(err, &se) || se.Field != "Drama.years" {
		t.Fatalf("null year accepted: %v", err)
	}
}

func TestDeriveGenreTrendTieBreaksByName(t *testing.T) {
	v := catalogView(t, "multiGenreTrendChart")
	v.Top = 1
	spec, err := Derive(v, payload(t, `{
		"War":    {"years": [2000], "counts": [3], "ratings": [6]},
		"Action": {"years": [2001], "counts": [3], "ratings": [7]}
	}`))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if spec.Datasets[0].Label != "Action - Count" || spec.Labels[0] != "2001" {
		t.Fatalf("tie not broken by name: %q %v", spec.Datasets[0].Label, spec.Labels)
	}
}
