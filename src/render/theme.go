package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Theme is the light/dark appearance applied to every chart.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns ThemeDark for "dark" and ThemeLight otherwise.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// palette implements chart.ColorPalette.
type palette struct {
	background drawing.Color
	canvas     drawing.Color
	grid       drawing.Color
	axis       drawing.Color
	text       drawing.Color
	series     []drawing.Color
}

var _ chart.ColorPalette = palette{}

func (p palette) BackgroundColor() drawing.Color       { return p.background }
func (p palette) BackgroundStrokeColor() drawing.Color { return p.background }
func (p palette) CanvasColor() drawing.Color           { return p.canvas }
func (p palette) CanvasStrokeColor() drawing.Color     { return p.grid }
func (p palette) AxisStrokeColor() drawing.Color       { return p.axis }
func (p palette) TextColor() drawing.Color             { return p.text }
func (p palette) GetSeriesColor(index int) drawing.Color {
	if len(p.series) == 0 {
		return p.text
	}
	if index < 0 {
		index = -index
	}
	return p.series[index%len(p.series)]
}

// default series colors when a dataset carries none (tableau10)
var defaultSeries = []drawing.Color{
	{R: 78, G: 121, B: 167, A: 255},
	{R: 242, G: 142, B: 43, A: 255},
	{R: 225, G: 87, B: 89, A: 255},
	{R: 118, G: 183, B: 178, A: 255},
	{R: 89, G: 161, B: 79, A: 255},
	{R: 237, G: 201, B: 72, A: 255},
	{R: 176, G: 122, B: 161, A: 255},
	{R: 255, G: 157, B: 167, A: 255},
	{R: 156, G: 117, B: 95, A: 255},
	{R: 186, G: 176, B: 172, A: 255},
}

func (t Theme) palette() palette {
	if t == ThemeDark {
		return palette{
			background: drawing.Color{R: 18, G: 18, B: 18, A: 255},
			canvas:     drawing.Color{R: 30, G: 30, B: 30, A: 255},
			grid:       drawing.Color{R: 60, G: 60, B: 60, A: 255},
			axis:       drawing.Color{R: 170, G: 170, B: 170, A: 255},
			text:       drawing.Color{R: 230, G: 230, B: 230, A: 255},
			series:     defaultSeries,
		}
	}
	return palette{
		background: drawing.ColorWhite,
		canvas:     drawing.ColorWhite,
		grid:       drawing.Color{R: 220, G: 220, B: 220, A: 255},
		axis:       drawing.Color{R: 102, G: 102, B: 102, A: 255},
		text:       drawing.Color{R: 51, G: 51, B: 51, A: 255},
		series:     defaultSeries,
	}
}

// legendStyle overrides the white legend box go-chart uses by default.
func (t Theme) legendStyle() chart.Style {
	p := t.palette()
	return chart.Style{
		FillColor:   p.canvas,
		FontColor:   p.text,
		StrokeColor: p.grid,
	}
}

// BlankColor is the empty-slot background.
func (t Theme) BlankColor() color.RGBA {
	if t == ThemeDark {
		return color.RGBA{R: 18, G: 18, B: 18, A: 255}
	}
	return color.RGBA{R: 245, G: 245, B: 245, A: 255}
}

// ParseColor understands #rgb, #rrggbb, #rrggbbaa, rgb(), rgba() and a few names.
func ParseColor(s string) (drawing.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "black":
		return drawing.ColorBlack, nil
	case "white":
		return drawing.ColorWhite, nil
	case "transparent":
		return drawing.ColorTransparent, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v[1:])
	}
	if strings.HasPrefix(v, "rgba(") || strings.HasPrefix(v, "rgb(") {
		open := strings.IndexByte(v, '(')
		if !strings.HasSuffix(v, ")") {
			return drawing.Color{}, fmt.Errorf("color %q: missing )", s)
		}
		parts := strings.Split(v[open+1:len(v)-1], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return drawing.Color{}, fmt.Errorf("color %q: want 3 or 4 components", s)
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil || n < 0 || n > 255 {
				return drawing.Color{}, fmt.Errorf("color %q: bad component %q", s, parts[i])
			}
			rgb[i] = uint8(n)
		}
		a := uint8(255)
		if len(parts) == 4 {
			f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil || f < 0 || f > 1 {
				return drawing.Color{}, fmt.Errorf("color %q: bad alpha %q", s, parts[3])
			}
			a = uint8(f*255 + 0.5)
		}
		return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, nil
	}
	return drawing.Color{}, fmt.Errorf("unsupported color %q", s)
}

func parseHex(h string) (drawing.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return drawing.Color{}, fmt.Errorf("bad hex color #%s", h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("bad hex color #%s: %w", h, err)
	}
	if len(h) == 6 {
		return drawing.Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
	}
	return drawing.Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// opaque drops alpha; used for outlines and legend swatches.
func opaque(c drawing.Color) drawing.Color {
	c.A = 255
	return c
}
