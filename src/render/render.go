// Package render draws chart specs with go-chart into raster images and
// paints them onto surfaces.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// ErrReleased is returned when exporting a chart that was already released.
var ErrReleased = errors.New("chart released")

// Minimum drawable size; smaller surfaces are scaled up.
const (
	minWidth  = 320
	minHeight = 200
)

// Renderer implements registry.Renderer with go-chart.
type Renderer struct {
	mu        sync.RWMutex
	theme     Theme
	showHints bool
}

var _ registry.Renderer = (*Renderer)(nil)

// defaultFont is loaded once and set on every chart so renders never touch
// go-chart's unguarded font global.
var defaultFont = sync.OnceValues(chart.GetDefaultFont)

func New(theme Theme) *Renderer { return &Renderer{theme: theme} }

func (r *Renderer) SetTheme(t Theme) {
	r.mu.Lock()
	r.theme = t
	r.mu.Unlock()
}

func (r *Renderer) Theme() Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

// SetHints toggles the explanatory overlay drawn under each chart.
func (r *Renderer) SetHints(on bool) {
	r.mu.Lock()
	r.showHints = on
	r.mu.Unlock()
}

func (r *Renderer) Hints() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.showHints
}

// Construct validates spec, draws it at the surface size and paints the result.
func (r *Renderer) Construct(spec types.Spec, target registry.Surface) (registry.Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	w, h := target.Size()
	img, err := r.Draw(spec, w, h)
	if err != nil {
		return nil, err
	}
	target.Paint(img)
	return &handle{img: img, target: target}, nil
}

// Draw renders spec to an image of (at least) w x h pixels.
func (r *Renderer) Draw(spec types.Spec, w, h int) (image.Image, error) {
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}
	theme, hints := r.Theme(), r.Hints()
	ch, err := buildChart(spec, w, h, theme, hints && spec.Hint != "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", spec.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", spec.Title, err)
	}
	if hints && spec.Hint != "" {
		img = drawHint(img, spec.Hint)
	}
	return img, nil
}

type handle struct {
	mu       sync.Mutex
	img      image.Image
	target   registry.Surface
	released bool
}

// Release detaches the chart from its surface. Calling it twice is harmless.
func (h *handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	h.img = nil
	h.target.Clear()
}

func (h *handle) ExportImage(w io.Writer) error {
	h.mu.Lock()
	img := h.img
	released := h.released
	h.mu.Unlock()
	if released || img == nil {
		return ErrReleased
	}
	return png.Encode(w, img)
}

// Image returns the rendered raster, or nil after Release.
func (h *handle) Image() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.img
}

func buildChart(spec types.Spec, w, h int, theme Theme, withHint bool) (chart.Chart, error) {
	pal := theme.palette()
	colors, err := datasetColors(spec, pal)
	if err != nil {
		return chart.Chart{}, err
	}

	// bar groups: datasets sharing a stack key share one slot within the category
	type group struct {
		base []float64
	}
	groupIndex := map[string]int{}
	var groups []*group
	bars := map[int]int{}
	for i, d := range spec.Datasets {
		if spec.DatasetKind(i) != types.KindBar {
			continue
		}
		key := fmt.Sprintf("ds:%d", i)
		switch {
		case d.Stack != "":
			key = fmt.Sprintf("stack:%d:%s", d.Axis, d.Stack)
		case axisFor(spec, d.Axis).Stacked:
			key = fmt.Sprintf("axis:%d", d.Axis)
		}
		gi, ok := groupIndex[key]
		if !ok {
			gi = len(groups)
			groupIndex[key] = gi
			groups = append(groups, &group{base: make([]float64, len(spec.Labels))})
		}
		bars[i] = gi
	}
	slotWidth := 0.8
	if len(groups) > 0 {
		slotWidth = 0.8 / float64(len(groups))
	}

	var primary, secondary extent
	ext := func(a types.AxisID) *extent {
		if a == types.AxisSecondary {
			return &secondary
		}
		return &primary
	}
	series := make([]chart.Series, 0, len(spec.Datasets))
	for i, d := range spec.Datasets {
		yAxis := chart.YAxisPrimary
		if d.Axis == types.AxisSecondary {
			yAxis = chart.YAxisSecondary
		}
		col := colors[i]
		e := ext(d.Axis)
		if gi, ok := bars[i]; ok {
			g := groups[gi]
			base := append([]float64(nil), g.base...)
			for j, v := range d.Values {
				if math.IsNaN(v) {
					continue
				}
				g.base[j] += v
				e.add(base[j])
				e.add(g.base[j])
			}
			e.hasBars = true
			series = append(series, barSeries{
				name:   d.Label,
				yAxis:  yAxis,
				values: d.Values,
				base:   base,
				offset: -0.4 + slotWidth*(float64(gi)+0.5),
				width:  slotWidth * 0.9,
				style: chart.Style{
					FillColor:   col,
					StrokeColor: opaque(col),
					StrokeWidth: 1,
				},
			})
			continue
		}
		for _, v := range d.Values {
			e.add(v)
		}
		st := chart.Style{
			StrokeColor: opaque(col),
			StrokeWidth: 2,
			DotColor:    opaque(col),
			DotWidth:    2.5,
		}
		if d.Dashed {
			st.StrokeDashArray = []float64{6, 4}
			st.DotWidth = 0
		}
		series = append(series, lineSeries{name: d.Label, yAxis: yAxis, values: d.Values, style: st})
	}

	rotate, step, padBottom := labelLayout(spec.Labels, w-120, spec.XRotate)
	if spec.XTitle != "" {
		padBottom += 16
	}
	if withHint {
		padBottom += 18
	}
	font, err := defaultFont()
	if err != nil {
		return chart.Chart{}, fmt.Errorf("load font: %w", err)
	}
	xRange, xTicks := categoryAxis(spec.Labels, step)
	yRange, yTicks := axisScale(spec.Primary, primary)

	ch := chart.Chart{
		Title:        spec.Title,
		Font:         font,
		Width:        w,
		Height:       h,
		ColorPalette: pal,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: padBottom}},
		XAxis: chart.XAxis{
			Name:      spec.XTitle,
			Range:     xRange,
			Ticks:     xTicks,
			TickStyle: chart.Style{TextRotationDegrees: rotate},
		},
		YAxis: chart.YAxis{
			Name:  spec.Primary.Title,
			Range: yRange,
			Ticks: yTicks,
		},
		Series: series,
	}
	if spec.HasSecondary() && spec.Secondary != nil {
		r2, t2 := axisScale(*spec.Secondary, secondary)
		ch.YAxisSecondary = chart.YAxis{Name: spec.Secondary.Title, Range: r2, Ticks: t2}
	}
	switch spec.Legend {
	case types.LegendNone:
	case types.LegendBottom:
		ch.Elements = []chart.Renderable{chart.LegendThin(&ch, theme.legendStyle())}
	default:
		ch.Elements = []chart.Renderable{chart.Legend(&ch, theme.legendStyle())}
	}
	return ch, nil
}

func axisFor(spec types.Spec, a types.AxisID) types.Axis {
	if a == types.AxisSecondary && spec.Secondary != nil {
		return *spec.Secondary
	}
	return spec.Primary
}

func datasetColors(spec types.Spec, pal palette) ([]drawing.Color, error) {
	out := make([]drawing.Color, len(spec.Datasets))
	for i, d := range spec.Datasets {
		if d.Color == "" {
			out[i] = pal.GetSeriesColor(i)
			continue
		}
		c, err := ParseColor(d.Color)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Label, err)
		}
		out[i] = c
	}
	return out, nil
}
