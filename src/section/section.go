// Package section tracks which dashboard section is visible. Exactly one
// section is active at any time; navigation controls mirror that choice.
package section

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

var ErrUnknownSection = errors.New("unknown section")

// Control is one navigation element that activates Section.
type Control struct {
	ID      string
	Section types.Section
}

// Listener observes activations after the state change has been applied.
type Listener func(prev, next types.Section)

type Controller struct {
	mu        sync.Mutex
	sections  []types.Section
	active    types.Section
	controls  []Control
	selected  map[string]bool
	listeners []Listener
}

// New returns a controller with initial active and its controls selected.
func New(sections []types.Section, initial types.Section, controls ...Control) (*Controller, error) {
	c := &Controller{
		sections: append([]types.Section(nil), sections...),
		controls: append([]Control(nil), controls...),
		selected: map[string]bool{},
	}
	if !c.known(initial) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, initial)
	}
	for _, ctl := range controls {
		if !c.known(ctl.Section) {
			return nil, fmt.Errorf("control %s: %w: %q", ctl.ID, ErrUnknownSection, ctl.Section)
		}
	}
	c.active = initial
	c.highlight(initial)
	return c, nil
}

// NavControls builds the desktop, mobile and floating-menu controls for each section.
func NavControls(sections []types.Section) []Control {
	var out []Control
	for _, group := range []string{"desktop", "mobile", "fab"} {
		for _, s := range sections {
			out = append(out, Control{ID: group + "-" + string(s), Section: s})
		}
	}
	return out
}

func (c *Controller) known(s types.Section) bool {
	for _, v := range c.sections {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Controller) highlight(s types.Section) {
	for _, ctl := range c.controls {
		c.selected[ctl.ID] = ctl.Section == s
	}
}

// OnChange registers fn; it runs synchronously after each effective activation.
func (c *Controller) OnChange(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Activate makes name the only visible section. Activating the current
// section is a no-op.
func (c *Controller) Activate(name types.Section) error {
	c.mu.Lock()
	if !c.known(name) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	if name == c.active {
		c.mu.Unlock()
		return nil
	}
	prev := c.active
	c.active = name
	c.highlight(name)
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, name)
	}
	return nil
}

func (c *Controller) Active() types.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) IsVisible(s types.Section) bool { return c.Active() == s }

// Visible returns the visible sections; always exactly one.
func (c *Controller) Visible() []types.Section { return []types.Section{c.Active()} }

func (c *Controller) Sections() []types.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Section(nil), c.sections...)
}

// Selected returns the ids of highlighted controls, sorted.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for id, on := range c.selected {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// IsSelected reports the highlight state of one control.
func (c *Controller) IsSelected(controlID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[controlID]
}
