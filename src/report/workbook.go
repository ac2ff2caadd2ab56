package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

const indexSheet = "Charts"

// WriteWorkbook writes one sheet per chart holding its labels and dataset
// columns plus a native chart, and an index sheet listing them.
func WriteWorkbook(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", indexSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(indexSheet, "A1", &[]any{"Section", "Chart", "Title", "Sheet"}); err != nil {
		return err
	}
	used := map[string]bool{strings.ToLower(indexSheet): true}
	row := 2
	for _, group := range grouped(entries) {
		for _, e := range group {
			if err := e.Spec.Validate(); err != nil {
				return fmt.Errorf("%s: %w", e.Slot, err)
			}
			name := sheetName(e.Slot, used)
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
			if err := writeData(f, name, e.Spec); err != nil {
				return fmt.Errorf("%s: %w", e.Slot, err)
			}
			if err := addChart(f, name, e.Spec); err != nil {
				return fmt.Errorf("%s chart: %w", e.Slot, err)
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(indexSheet, cell, &[]any{e.Section.Title(), e.Slot, e.Spec.Title, name}); err != nil {
				return err
			}
			link, _ := excelize.CoordinatesToCellName(4, row)
			if err := f.SetCellHyperLink(indexSheet, link, fmt.Sprintf("'%s'!A1", name), "Location"); err != nil {
				return err
			}
			row++
		}
	}
	if row == 2 {
		return fmt.Errorf("no charts to write")
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

// sheetName derives a unique, valid sheet name from slot.
func sheetName(slot string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\'`, r) {
			return '_'
		}
		return r
	}, slot)
	if clean == "" {
		clean = "chart"
	}
	clean = truncateRunes(clean, maxSheetName)
	name := clean
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		name = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

// maxSheetName is Excel's sheet name limit, in characters.
const maxSheetName = 31

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func writeData(f *excelize.File, sheet string, spec types.Spec) error {
	header := []any{spec.XTitle}
	if spec.XTitle == "" {
		header[0] = "Label"
	}
	for _, d := range spec.Datasets {
		header = append(header, d.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, label := range spec.Labels {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellStr(sheet, cell, label); err != nil {
			return err
		}
		for j, d := range spec.Datasets {
			v := cellValue(d.Values[i])
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

type chartGroup struct {
	kind   types.ChartKind
	axis   types.AxisID
	series []excelize.ChartSeries
}

func addChart(f *excelize.File, sheet string, spec types.Spec) error {
	last := len(spec.Labels) + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last)
	var groups []*chartGroup
	find := func(kind types.ChartKind, axis types.AxisID) *chartGroup {
		for _, g := range groups {
			if g.kind == kind && g.axis == axis {
				return g
			}
		}
		g := &chartGroup{kind: kind, axis: axis}
		groups = append(groups, g)
		return g
	}
	for i, d := range spec.Datasets {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		s := excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last),
		}
		g := find(spec.DatasetKind(i), d.Axis)
		g.series = append(g.series, s)
	}

	charts := make([]*excelize.Chart, len(groups))
	for i, g := range groups {
		c := &excelize.Chart{
			Type:         chartType(g.kind, spec.Primary.Stacked && g.axis == types.AxisPrimary),
			Series:       g.series,
			ShowBlanksAs: "gap",
			Legend:       excelize.ChartLegend{Position: legendPosition(spec.Legend)},
		}
		if g.axis == types.AxisSecondary && i > 0 {
			c.YAxis = excelize.ChartAxis{Secondary: true}
		}
		charts[i] = c
	}
	primary := charts[0]
	primary.Title = []excelize.RichTextRun{{Text: spec.Title}}
	primary.Dimension = excelize.ChartDimension{Width: 960, Height: 420}
	anchor, _ := excelize.CoordinatesToCellName(len(spec.Datasets)+3, 2)
	return f.AddChart(sheet, anchor, primary, charts[1:]...)
}

func chartType(kind types.ChartKind, stacked bool) excelize.ChartType {
	if kind == types.KindLine {
		return excelize.Line
	}
	if stacked {
		return excelize.ColStacked
	}
	return excelize.Col
}

func legendPosition(p types.LegendPosition) string {
	switch p {
	case types.LegendNone:
		return "none"
	case types.LegendBottom:
		return "bottom"
	}
	return "top"
}
