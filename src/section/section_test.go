package section

import (
	"errors"
	"testing"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	all := types.AllSections()
	c, err := New(all, types.SectionAnime, NavControls(all)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestActivateShowsExactlyOne(t *testing.T) {
	c := newController(t)
	if c.Active() != types.SectionAnime {
		t.Fatalf("initial section = %s", c.Active())
	}
	for _, s := range []types.Section{types.SectionMovie, types.SectionCombined, types.SectionGame, types.SectionAnime} {
		if err := c.Activate(s); err != nil {
			t.Fatalf("activate %s: %v", s, err)
		}
		vis := c.Visible()
		if len(vis) != 1 || vis[0] != s {
			t.Fatalf("visible after %s = %v", s, vis)
		}
		for _, other := range types.AllSections() {
			if c.IsVisible(other) != (other == s) {
				t.Fatalf("section %s visibility wrong after activating %s", other, s)
			}
		}
	}
}

func TestActivateHighlightsControls(t *testing.T) {
	c := newController(t)
	if err := c.Activate(types.SectionGame); err != nil {
		t.Fatalf("activate: %v", err)
	}
	sel := c.Selected()
	want := []string{"desktop-game", "fab-game", "mobile-game"}
	if len(sel) != len(want) {
		t.Fatalf("selected = %v", sel)
	}
	for i := range want {
		if sel[i] != want[i] {
			t.Fatalf("selected = %v want %v", sel, want)
		}
	}
	if c.IsSelected("desktop-anime") {
		t.Fatalf("previous control still selected")
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	c := newController(t)
	calls := 0
	c.OnChange(func(prev, next types.Section) {
		calls++
		if prev != types.SectionAnime || next != types.SectionMovie {
			t.Fatalf("unexpected transition %s -> %s", prev, next)
		}
		if c.Active() != next {
			t.Fatalf("listener ran before state change")
		}
	})
	_ = c.Activate(types.SectionMovie)
	_ = c.Activate(types.SectionMovie)
	if calls != 1 {
		t.Fatalf("listener calls = %d, want 1", calls)
	}
	if c.Active() != types.SectionMovie {
		t.Fatalf("active = %s", c.Active())
	}
}

func TestActivateUnknown(t *testing.T) {
	c := newController(t)
	err := c.Activate("music")
	if !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if c.Active() != types.SectionAnime {
		t.Fatalf("state changed on unknown section")
	}
	if _, err := New(types.AllSections(), "music"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("New accepted unknown initial: %v", err)
	}
}
