package main

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

func TestSurfaceSetLookupAndResize(t *testing.T) {
	ss := newSurfaceSet()
	ss.add("animeByYear", 600, 260)
	ss.add("gameByYear", 600, 260)
	if _, ok := ss.Surface("missing"); ok {
		t.Fatalf("unknown slot resolved")
	}
	s, ok := ss.Surface("animeByYear")
	if !ok || s.ID() != "animeByYear" {
		t.Fatalf("lookup failed")
	}
	if w, h := s.Size(); w != 600 || h != 260 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if got := ss.ids(); len(got) != 2 || got[0] != "animeByYear" {
		t.Fatalf("ids = %v", got)
	}
	if !ss.resize(800, 336) {
		t.Fatalf("resize reported no change")
	}
	if ss.resize(800, 336) {
		t.Fatalf("same size reported as change")
	}
	if w, h := s.Size(); w != 800 || h != 336 {
		t.Fatalf("resized = %dx%d", w, h)
	}
	img := ss.blank(20, 10)
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Fatalf("blank bounds = %v", img.Bounds())
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	prefs := a.Preferences()

	cfg := config.Default()
	loadPrefs(prefs, &cfg)
	if cfg.Dashboard.DefaultSection != string(types.SectionAnime) || cfg.Dashboard.Theme != "light" {
		t.Fatalf("empty prefs changed config: %+v", cfg.Dashboard)
	}

	d, err := dashboard.New(cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("dashboard.New: %v", err)
	}
	if err := d.Sections.Activate(types.SectionGame); err != nil {
		t.Fatalf("activate: %v", err)
	}
	d.Renderer.SetTheme(render.ThemeDark)
	d.Renderer.SetHints(true)
	storePrefs(prefs, d)

	next := config.Default()
	loadPrefs(prefs, &next)
	if next.Dashboard.DefaultSection != string(types.SectionGame) || next.Dashboard.Theme != "dark" || !next.Dashboard.ShowHints {
		t.Fatalf("restored = %+v", next.Dashboard)
	}

	prefs.SetString(prefSection, "music")
	again := config.Default()
	loadPrefs(prefs, &again)
	if again.Dashboard.DefaultSection != string(types.SectionAnime) {
		t.Fatalf("unknown stored section applied: %q", again.Dashboard.DefaultSection)
	}
}
