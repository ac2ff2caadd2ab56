// Package registry keeps at most one live chart per named slot and replaces
// charts idempotently: the previous instance is released before a new one is built.
package registry

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sort"
	"sync"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

var (
	ErrEmptySlot     = errors.New("empty slot id")
	ErrTargetMissing = errors.New("target surface missing")
	ErrNoChart       = errors.New("no live chart in slot")
)

// Surface is a drawable target a chart is attached to.
type Surface interface {
	ID() string
	Size() (width, height int)
	Paint(img image.Image)
	Clear()
}

// SurfaceProvider resolves slot ids to surfaces.
type SurfaceProvider interface {
	Surface(id string) (Surface, bool)
}

// Handle is a live chart instance owned by the registry.
type Handle interface {
	Release()
	ExportImage(w io.Writer) error
}

// Renderer constructs chart instances on a surface.
type Renderer interface {
	Construct(spec types.Spec, target Surface) (Handle, error)
}

// RenderError reports a construction failure; the slot is left empty.
type RenderError struct {
	Slot string
	Err  error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Slot, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

type slot struct {
	mu     sync.Mutex
	handle Handle
	spec   types.Spec
}

// Registry maps slot ids to live chart handles.
type Registry struct {
	renderer Renderer
	surfaces SurfaceProvider

	mu    sync.Mutex
	slots map[string]*slot
}

func New(renderer Renderer, surfaces SurfaceProvider) *Registry {
	return &Registry{renderer: renderer, surfaces: surfaces, slots: map[string]*slot{}}
}

func (r *Registry) slot(id string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		s = &slot{}
		r.slots[id] = s
	}
	return s
}

func (r *Registry) lookup(id string) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	return s, ok
}

// Render draws spec into slotID, releasing any chart already there first.
// A missing surface returns ErrTargetMissing without touching registry state.
func (r *Registry) Render(slotID string, spec types.Spec) error {
	if slotID == "" {
		return ErrEmptySlot
	}
	target, ok := r.surfaces.Surface(slotID)
	if !ok || target == nil {
		return fmt.Errorf("%w: %s", ErrTargetMissing, slotID)
	}
	s := r.slot(slotID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.replaceLocked(slotID, s, spec, target)
}

func (r *Registry) replaceLocked(id string, s *slot, spec types.Spec, target Surface) error {
	if s.handle != nil {
		s.handle.Release()
		s.handle = nil
		s.spec = types.Spec{}
	}
	h, err := r.renderer.Construct(spec, target)
	if err != nil {
		return &RenderError{Slot: id, Err: err}
	}
	if h == nil {
		return &RenderError{Slot: id, Err: errors.New("renderer returned no handle")}
	}
	s.handle = h
	s.spec = spec
	return nil
}

// RenderAll re-renders every live slot from its stored spec (theme changes).
func (r *Registry) RenderAll() error {
	var errs []error
	for _, id := range r.Slots() {
		s, ok := r.lookup(id)
		if !ok {
			continue
		}
		s.mu.Lock()
		if s.handle == nil {
			s.mu.Unlock()
			continue
		}
		spec := s.spec
		target, found := r.surfaces.Surface(id)
		if !found || target == nil {
			s.mu.Unlock()
			errs = append(errs, fmt.Errorf("%w: %s", ErrTargetMissing, id))
			continue
		}
		if err := r.replaceLocked(id, s, spec, target); err != nil {
			errs = append(errs, err)
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Clear releases the live chart of slotID, if any. It reports whether a chart
// was released.
func (r *Registry) Clear(slotID string) bool {
	s, ok := r.lookup(slotID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return false
	}
	s.handle.Release()
	s.handle = nil
	s.spec = types.Spec{}
	return true
}

// Handle returns the live chart of slotID.
func (r *Registry) Handle(slotID string) (Handle, bool) {
	s, ok := r.lookup(slotID)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle, s.handle != nil
}

// Spec returns the spec the live chart of slotID was built from.
func (r *Registry) Spec(slotID string) (types.Spec, bool) {
	s, ok := r.lookup(slotID)
	if !ok {
		return types.Spec{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec, s.handle != nil
}

// Export writes the raster image of the live chart in slotID.
func (r *Registry) Export(slotID string, w io.Writer) error {
	s, ok := r.lookup(slotID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChart, slotID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return fmt.Errorf("%w: %s", ErrNoChart, slotID)
	}
	return s.handle.ExportImage(w)
}

// Slots lists slot ids with a live chart, sorted.
func (r *Registry) Slots() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.slots))
	all := make(map[string]*slot, len(r.slots))
	for id, s := range r.slots {
		all[id] = s
	}
	r.mu.Unlock()
	for id, s := range all {
		s.mu.Lock()
		live := s.handle != nil
		s.mu.Unlock()
		if live {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of live charts.
func (r *Registry) Len() int { return len(r.Slots()) }
