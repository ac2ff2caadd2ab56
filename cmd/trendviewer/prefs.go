package main

import (
	fyne "fyne.io/fyne/v2"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

const (
	prefTheme   = "theme"
	prefSection = "section"
	prefHints   = "showHints"
)

// loadPrefs overlays the stored UI state on cfg. Unknown sections are ignored.
func loadPrefs(prefs fyne.Preferences, cfg *config.Config) {
	if prefs == nil || cfg == nil {
		return
	}
	cfg.Dashboard.Theme = string(render.ParseTheme(prefs.StringWithFallback(prefTheme, cfg.Dashboard.Theme)))
	if sec, ok := types.ParseSection(prefs.StringWithFallback(prefSection, cfg.Dashboard.DefaultSection)); ok {
		cfg.Dashboard.DefaultSection = string(sec)
	}
	cfg.Dashboard.ShowHints = prefs.BoolWithFallback(prefHints, cfg.Dashboard.ShowHints)
}

func storePrefs(prefs fyne.Preferences, d *dashboard.Dashboard) {
	prefs.SetString(prefTheme, string(d.Theme()))
	prefs.SetString(prefSection, string(d.Sections.Active()))
	prefs.SetBool(prefHints, d.Hints())
}

func savePrefs(state *uiState) {
	if state == nil || state.app == nil || state.d == nil {
		return
	}
	storePrefs(state.app.Preferences(), state.d)
}
