package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

const (
	htmlWidth  = "1100px"
	htmlHeight = "460px"
)

type htmlColors struct {
	background string
	text       string
}

func colorsFor(theme render.Theme) htmlColors {
	if theme == render.ThemeDark {
		return htmlColors{background: "#121212", text: "#e6e6e6"}
	}
	return htmlColors{background: "#ffffff", text: "#333333"}
}

// WriteHTML renders an interactive page with one chart per entry, grouped by
// section.
func WriteHTML(w io.Writer, title string, theme render.Theme, entries []Entry) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	n := 0
	for _, group := range grouped(entries) {
		for _, e := range group {
			c, err := echart(e, theme)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Slot, err)
			}
			page.AddCharts(c)
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("no charts to write")
	}
	return page.Render(w)
}

func echart(e Entry, theme render.Theme) (components.Charter, error) {
	spec := e.Spec
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	global := globalOpts(e, theme)
	bar := charts.NewBar()
	line := charts.NewLine()
	var bars, lines int
	for i, d := range spec.Datasets {
		axis := 0
		if d.Axis == types.AxisSecondary {
			axis = 1
		}
		if spec.DatasetKind(i) == types.KindLine {
			line.AddSeries(d.Label, lineData(d.Values), lineOpts(d, axis)...)
			lines++
			continue
		}
		bar.AddSeries(d.Label, barData(d.Values), barOpts(spec, d, axis)...)
		bars++
	}
	var secondary *opts.YAxis
	if spec.Secondary != nil {
		secondary = yAxis(*spec.Secondary, theme)
	}

	if spec.Kind == types.KindLine {
		line.SetGlobalOptions(global...)
		line.SetXAxis(spec.Labels)
		if secondary != nil {
			line.ExtendYAxis(*secondary)
		}
		if bars > 0 {
			line.Overlap(bar)
		}
		return line, nil
	}
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(spec.Labels)
	if secondary != nil {
		bar.ExtendYAxis(*secondary)
	}
	if lines > 0 {
		bar.Overlap(line)
	}
	return bar, nil
}

func globalOpts(e Entry, theme render.Theme) []charts.GlobalOpts {
	spec := e.Spec
	col := colorsFor(theme)
	legend := opts.Legend{Show: opts.Bool(spec.Legend != types.LegendNone), TextStyle: &opts.TextStyle{Color: col.text}}
	if spec.Legend == types.LegendBottom {
		legend.Bottom = "0"
	} else {
		legend.Top = "30"
	}
	primary := yAxis(spec.Primary, theme)
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:           htmlWidth,
			Height:          htmlHeight,
			BackgroundColor: col.background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      spec.Title,
			Subtitle:   strings.TrimSpace(e.Section.Title() + "  " + spec.Hint),
			TitleStyle: &opts.TextStyle{Color: col.text},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(legend),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: opts.Bool(true), Type: "png", Name: e.Slot},
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         spec.XTitle,
			NameLocation: "center",
			NameGap:      40,
			AxisLabel:    &opts.AxisLabel{Color: col.text, Rotate: spec.XRotate},
		}),
		charts.WithYAxisOpts(*primary),
		charts.WithGridOpts(opts.Grid{Left: "70", Right: "70", Bottom: "90", Top: "80"}),
	}
}

func yAxis(ax types.Axis, theme render.Theme) *opts.YAxis {
	y := &opts.YAxis{
		Name:      ax.Title,
		Type:      "value",
		AxisLabel: &opts.AxisLabel{Color: colorsFor(theme).text},
	}
	if ax.Min != nil {
		y.Min = *ax.Min
	} else if ax.BeginAtZero {
		y.Min = 0
	}
	if ax.Max != nil {
		y.Max = *ax.Max
	}
	return y
}

func barData(vals []float64) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: cellValue(v)}
	}
	return out
}

func lineData(vals []float64) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: cellValue(v)}
	}
	return out
}

func barOpts(spec types.Spec, d types.Dataset, axis int) []charts.SeriesOpts {
	stack := d.Stack
	if stack == "" && spec.Primary.Stacked && axis == 0 {
		stack = "primary"
	}
	out := []charts.SeriesOpts{charts.WithBarChartOpts(opts.BarChart{Stack: stack, YAxisIndex: axis})}
	if d.Color != "" {
		out = append(out, charts.WithItemStyleOpts(opts.ItemStyle{Color: d.Color}))
	}
	return out
}

func lineOpts(d types.Dataset, axis int) []charts.SeriesOpts {
	style := opts.LineStyle{Width: 2}
	if d.Dashed {
		style.Type = "dashed"
	}
	if d.Color != "" {
		style.Color = d.Color
	}
	out := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: axis, ShowSymbol: opts.Bool(true)}),
		charts.WithLineStyleOpts(style),
	}
	if d.Color != "" {
		out = append(out, charts.WithItemStyleOpts(opts.ItemStyle{Color: d.Color}))
	}
	return out
}
