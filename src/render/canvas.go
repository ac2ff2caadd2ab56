package render

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/MediaTrendsDashboard/src/registry"
)

// Canvas is an in-memory surface used by the headless dashboard and exports.
type Canvas struct {
	id   string
	w, h int

	mu  sync.Mutex
	img image.Image
}

func NewCanvas(id string, w, h int) *Canvas { return &Canvas{id: id, w: w, h: h} }

func (c *Canvas) ID() string { return c.id }

func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *Canvas) Paint(img image.Image) {
	c.mu.Lock()
	c.img = img
	c.mu.Unlock()
}

func (c *Canvas) Clear() { c.Paint(nil) }

// Image is the last painted raster, nil when cleared.
func (c *Canvas) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img
}

// CanvasSet is a fixed collection of canvases keyed by slot id.
type CanvasSet struct {
	mu       sync.RWMutex
	canvases map[string]*Canvas
}

var _ registry.SurfaceProvider = (*CanvasSet)(nil)

// NewCanvasSet creates one w x h canvas per id.
func NewCanvasSet(w, h int, ids ...string) *CanvasSet {
	s := &CanvasSet{canvases: make(map[string]*Canvas, len(ids))}
	for _, id := range ids {
		s.canvases[id] = NewCanvas(id, w, h)
	}
	return s
}

func (s *CanvasSet) Surface(id string) (registry.Surface, bool) {
	c, ok := s.Canvas(id)
	if !ok {
		return nil, false
	}
	return c, true
}

func (s *CanvasSet) Canvas(id string) (*Canvas, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.canvases[id]
	return c, ok
}

func (s *CanvasSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.canvases))
	for id := range s.canvases {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resize changes the size used for subsequent renders.
func (s *CanvasSet) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.canvases {
		c.mu.Lock()
		c.w, c.h = w, h
		c.mu.Unlock()
	}
}

// Blank is the placeholder shown in an empty slot.
func Blank(w, h int, theme Theme) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(theme.BlankColor()), image.Point{}, draw.Src)
	return img
}

// drawHint draws a small hint string onto the image near the bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
