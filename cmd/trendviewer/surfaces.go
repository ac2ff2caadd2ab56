package main

import (
	"image"
	"sort"
	"sync"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
)

// imageSurface paints chart rasters into a canvas.Image owned by a card.
type imageSurface struct {
	id  string
	img *canvas.Image
	set *surfaceSet

	mu   sync.Mutex
	w, h int
	live bool
}

func (s *imageSurface) ID() string { return s.id }

func (s *imageSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// Paint may be called from loader goroutines; the widget update runs on the UI thread.
func (s *imageSurface) Paint(img image.Image) {
	s.mu.Lock()
	s.live = img != nil
	s.mu.Unlock()
	if img == nil {
		img = s.set.blank(s.Size())
	}
	s.show(img)
}

func (s *imageSurface) Clear() { s.Paint(nil) }

// Live reports whether a chart (not the placeholder) is on screen.
func (s *imageSurface) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func (s *imageSurface) show(img image.Image) {
	w, h := s.Size()
	fyne.Do(func() {
		s.img.Image = img
		s.img.SetMinSize(fyne.NewSize(float32(w), float32(h)))
		s.img.Refresh()
	})
}

// surfaceSet maps slot ids to card images.
type surfaceSet struct {
	mu       sync.RWMutex
	surfaces map[string]*imageSurface
	theme    func() render.Theme
}

var _ registry.SurfaceProvider = (*surfaceSet)(nil)

func newSurfaceSet() *surfaceSet {
	return &surfaceSet{surfaces: map[string]*imageSurface{}, theme: func() render.Theme { return render.ThemeLight }}
}

// add creates the card image for id at w x h, showing the placeholder.
func (ss *surfaceSet) add(id string, w, h int) *imageSurface {
	img := canvas.NewImageFromImage(ss.blank(w, h))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	s := &imageSurface{id: id, img: img, set: ss, w: w, h: h}
	ss.mu.Lock()
	ss.surfaces[id] = s
	ss.mu.Unlock()
	return s
}

func (ss *surfaceSet) Surface(id string) (registry.Surface, bool) {
	s, ok := ss.get(id)
	if !ok {
		return nil, false
	}
	return s, true
}

func (ss *surfaceSet) get(id string) (*imageSurface, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.surfaces[id]
	return s, ok
}

func (ss *surfaceSet) ids() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]string, 0, len(ss.surfaces))
	for id := range ss.surfaces {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// resize reports whether any surface changed size.
func (ss *surfaceSet) resize(w, h int) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	changed := false
	for _, s := range ss.surfaces {
		s.mu.Lock()
		if s.w != w || s.h != h {
			s.w, s.h = w, h
			changed = true
		}
		s.mu.Unlock()
	}
	return changed
}

// blankEmpty repaints the placeholder of every surface without a chart.
func (ss *surfaceSet) blankEmpty() {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for _, s := range ss.surfaces {
		if !s.Live() {
			s.show(ss.blank(s.Size()))
		}
	}
}

func (ss *surfaceSet) blank(w, h int) image.Image {
	return render.Blank(w, h, ss.theme())
}
