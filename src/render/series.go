package render

import (
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// barSeries draws one dataset as bars at integer x positions. offset and width
// are in category units so several datasets can share a category side by side;
// base holds the stacked baseline per category.
type barSeries struct {
	name   string
	style  chart.Style
	yAxis  chart.YAxisType
	values []float64
	base   []float64
	offset float64
	width  float64
}

func (b barSeries) GetName() string           { return b.name }
func (b barSeries) GetStyle() chart.Style     { return b.style }
func (b barSeries) GetYAxis() chart.YAxisType { return b.yAxis }

func (b barSeries) Validate() error {
	if len(b.values) == 0 {
		return errors.New("bar series has no values")
	}
	if len(b.base) != len(b.values) {
		return errors.New("bar series base and values differ in length")
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.style.InheritFrom(defaults)
	for i, v := range b.values {
		if math.IsNaN(v) {
			continue
		}
		lo := b.base[i]
		hi := lo + v
		center := float64(i) + b.offset
		x0 := canvasBox.Left + xrange.Translate(center-b.width/2)
		x1 := canvasBox.Left + xrange.Translate(center+b.width/2)
		y0 := canvasBox.Bottom - yrange.Translate(lo)
		y1 := canvasBox.Bottom - yrange.Translate(hi)
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		if x1 <= x0 {
			x1 = x0 + 1
		}
		r.SetFillColor(style.FillColor)
		r.SetStrokeColor(style.StrokeColor)
		r.SetStrokeWidth(style.StrokeWidth)
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.LineTo(x0, y0)
		r.Close()
		r.FillStroke()
	}
}

// lineSeries draws one dataset as a polyline; NaN values break the line.
type lineSeries struct {
	name   string
	style  chart.Style
	yAxis  chart.YAxisType
	values []float64
}

func (l lineSeries) GetName() string           { return l.name }
func (l lineSeries) GetStyle() chart.Style     { return l.style }
func (l lineSeries) GetYAxis() chart.YAxisType { return l.yAxis }

func (l lineSeries) Validate() error {
	if len(l.values) == 0 {
		return errors.New("line series has no values")
	}
	return nil
}

func (l lineSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := l.style.InheritFrom(defaults)
	r.SetStrokeColor(style.StrokeColor)
	r.SetStrokeWidth(style.StrokeWidth)
	if len(style.StrokeDashArray) > 0 {
		r.SetStrokeDashArray(style.StrokeDashArray)
	}
	open := false
	for i, v := range l.values {
		if math.IsNaN(v) {
			if open {
				r.Stroke()
				open = false
			}
			continue
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		y := canvasBox.Bottom - yrange.Translate(v)
		if !open {
			r.MoveTo(x, y)
			open = true
			continue
		}
		r.LineTo(x, y)
	}
	if open {
		r.Stroke()
	}
	if len(style.StrokeDashArray) > 0 {
		r.SetStrokeDashArray(nil)
	}
	if style.DotWidth <= 0 {
		return
	}
	r.SetFillColor(style.DotColor)
	r.SetStrokeColor(style.DotColor)
	for i, v := range l.values {
		if math.IsNaN(v) {
			continue
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		y := canvasBox.Bottom - yrange.Translate(v)
		r.Circle(style.DotWidth, x, y)
		r.FillStroke()
	}
}
