package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sync/atomic"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/cmd/trendviewer/uihelpers"
	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
	"github.com/iafilius/MediaTrendsDashboard/src/views"
)

const (
	initialWidth  = 1280
	initialHeight = 860
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	logger   *zap.Logger
	d        *dashboard.Dashboard
	surfaces *surfaceSet

	sections []types.Section
	tabs     *container.AppTabs
	grids    map[types.Section]*fyne.Container
	cols     int

	// widgets
	status    *widget.Label
	diagLabel *widget.Label
	diagList  *widget.List
	diagRows  []diag.Entry
	themeBtn  *widget.Button
	hintsChk  *widget.Check

	loading atomic.Bool
}

// variantTheme pins the default theme to one variant.
type variantTheme struct{ variant fyne.ThemeVariant }

func (v *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, v.variant)
}
func (v *variantTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (v *variantTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (v *variantTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func appTheme(t render.Theme) fyne.Theme {
	if t == render.ThemeDark {
		return &variantTheme{variant: theme.VariantDark}
	}
	return &variantTheme{variant: theme.VariantLight}
}

func themeLabel(t render.Theme) string {
	if t == render.ThemeDark {
		return "Light theme"
	}
	return "Dark theme"
}

func main() {
	var (
		configPath  string
		baseURL     string
		logLevel    string
		screenshots string
	)
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults built in)")
	flag.StringVar(&baseURL, "api", "", "analytics backend base URL (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	flag.StringVar(&screenshots, "screenshots", "", "render every chart headlessly into DIR and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, err := diag.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if screenshots != "" {
		paths, err := RunScreenshotsMode(context.Background(), cfg, logger, screenshots)
		for _, p := range paths {
			fmt.Println(p)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "screenshots: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID("com.mediatrends.viewer")
	loadPrefs(a.Preferences(), &cfg)
	surfaces := newSurfaceSet()
	d, err := dashboard.New(cfg, logger, surfaces)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	surfaces.theme = d.Theme
	a.Settings().SetTheme(appTheme(d.Theme()))
	w := a.NewWindow(dashboard.Title)
	w.Resize(fyne.NewSize(initialWidth, initialHeight))

	state := &uiState{
		app:      a,
		window:   w,
		logger:   logger.Named("viewer"),
		d:        d,
		surfaces: surfaces,
		sections: d.Sections.Sections(),
	}
	state.build()
	buildMenus(state)
	state.watchResize()
	a.Lifecycle().SetOnStarted(state.reload)

	w.ShowAndRun()
}

func (s *uiState) build() {
	s.cols = uihelpers.ComputeGridColumns(initialWidth)
	cw, ch := uihelpers.ComputeChartDimensions(initialWidth, s.cols)
	s.grids = make(map[types.Section]*fyne.Container, len(s.sections))

	var items []*container.TabItem
	for _, sec := range s.sections {
		var cards []fyne.CanvasObject
		for _, v := range s.d.ViewsIn(sec) {
			cards = append(cards, s.card(v, cw, ch))
		}
		grid := container.NewGridWithColumns(s.cols, cards...)
		s.grids[sec] = grid
		items = append(items, container.NewTabItem(sec.Title(), container.NewVScroll(grid)))
	}

	// newest diagnostics first
	s.diagList = widget.NewList(
		func() int { return len(s.diagRows) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			ix := len(s.diagRows) - 1 - id
			if ix < 0 || ix >= len(s.diagRows) {
				o.(*widget.Label).SetText("")
				return
			}
			e := s.diagRows[ix]
			o.(*widget.Label).SetText(fmt.Sprintf("%s  %-14s %-22s %s", e.Time.Format("15:04:05"), e.Kind, e.Slot, e.Message))
		},
	)
	items = append(items, container.NewTabItem("Diagnostics", s.diagList))

	s.tabs = container.NewAppTabs(items...)
	s.tabs.SetTabLocation(container.TabLocationTop)
	s.tabs.SelectIndex(s.sectionIndex(s.d.Sections.Active()))
	s.tabs.OnSelected = func(*container.TabItem) {
		i := s.tabs.SelectedIndex()
		if i < 0 || i >= len(s.sections) {
			return // diagnostics tab keeps the active section
		}
		s.activate(s.sections[i])
	}
	s.d.Sections.OnChange(func(_, next types.Section) {
		fyne.Do(func() {
			if i := s.sectionIndex(next); i >= 0 && s.tabs.SelectedIndex() != i {
				s.tabs.SelectIndex(i)
			}
		})
	})

	s.status = widget.NewLabel("Loading…")
	s.diagLabel = widget.NewLabel("Diagnostics: 0")
	s.themeBtn = widget.NewButton(themeLabel(s.d.Theme()), s.toggleTheme)
	s.hintsChk = widget.NewCheck("Hints", nil)
	s.hintsChk.SetChecked(s.d.Hints())
	s.hintsChk.OnChanged = s.setHints

	top := container.NewHBox(
		widget.NewButtonWithIcon("Reload", theme.ViewRefreshIcon(), s.reload),
		s.themeBtn,
		s.hintsChk,
		widget.NewButtonWithIcon("Export All…", theme.DocumentSaveIcon(), func() { exportAll(s) }),
		layout.NewSpacer(),
		s.status,
		s.diagLabel,
	)
	s.window.SetContent(container.NewBorder(top, nil, nil, nil, s.tabs))
}

// card is one chart: its image surface plus per-chart actions.
func (s *uiState) card(v views.View, w, h int) fyne.CanvasObject {
	surf := s.surfaces.add(v.Slot, w, h)
	slot := v.Slot
	footer := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { go s.reloadOne(slot) }),
		widget.NewButtonWithIcon("Export PNG…", theme.DocumentSaveIcon(), func() { exportChartPNG(s, slot) }),
	)
	return widget.NewCard(v.Title, "", container.NewBorder(nil, footer, nil, nil, surf.img))
}

func (s *uiState) sectionIndex(sec types.Section) int {
	return lo.IndexOf(s.sections, sec)
}

func (s *uiState) activate(sec types.Section) {
	if err := s.d.Sections.Activate(sec); err != nil {
		s.logger.Warn("activate section", zap.String("section", string(sec)), zap.Error(err))
		return
	}
	savePrefs(s)
}

// reload fetches every chart in the background; a reload already in flight wins.
func (s *uiState) reload() {
	if !s.loading.CompareAndSwap(false, true) {
		return
	}
	s.status.SetText("Loading…")
	go func() {
		defer s.loading.Store(false)
		out := s.d.Refresh(context.Background())
		fyne.Do(func() { s.showOutcomes(out) })
	}()
}

func (s *uiState) reloadOne(slot string) {
	o, err := s.d.LoadView(context.Background(), slot)
	fyne.Do(func() {
		if err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		if !o.OK() {
			s.status.SetText(fmt.Sprintf("%s failed: %s", slot, views.Classify(o.Err)))
		}
		s.refreshDiagnostics()
	})
}

func (s *uiState) showOutcomes(out []views.Outcome) {
	failed := lo.CountBy(out, func(o views.Outcome) bool { return !o.OK() })
	s.status.SetText(fmt.Sprintf("%d/%d charts at %s", len(out)-failed, len(out), time.Now().Format("15:04:05")))
	s.refreshDiagnostics()
}

func (s *uiState) refreshDiagnostics() {
	s.diagRows = s.d.Diag.Entries()
	s.diagLabel.SetText("Diagnostics: " + uihelpers.FormatCounts(s.d.Diag.Counts()))
	s.diagList.Refresh()
}

func (s *uiState) toggleTheme() {
	go func() {
		next, err := s.d.ToggleTheme()
		s.surfaces.blankEmpty()
		fyne.Do(func() {
			s.app.Settings().SetTheme(appTheme(next))
			s.themeBtn.SetText(themeLabel(next))
			if err != nil {
				dialog.ShowError(err, s.window)
			}
			savePrefs(s)
		})
	}()
}

func (s *uiState) setHints(on bool) {
	go func() {
		err := s.d.SetHints(on)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, s.window)
			}
			savePrefs(s)
		})
	}()
}

// watchResize re-lays out the grid and re-renders charts when the window width changes.
func (s *uiState) watchResize() {
	done := make(chan struct{})
	s.window.SetOnClosed(func() {
		savePrefs(s)
		close(done)
	})
	go func() {
		t := time.NewTicker(300 * time.Millisecond)
		defer t.Stop()
		prevW := float32(initialWidth)
		for {
			select {
			case <-done:
				return
			case <-t.C:
				c := s.window.Canvas()
				if c == nil {
					continue
				}
				curW := c.Size().Width
				if curW <= 0 || curW == prevW {
					continue
				}
				prevW = curW
				s.relayout(curW)
			}
		}
	}()
}

func (s *uiState) relayout(winW float32) {
	cols := uihelpers.ComputeGridColumns(winW)
	cw, ch := uihelpers.ComputeChartDimensions(winW, cols)
	fyne.Do(func() {
		if cols == s.cols {
			return
		}
		s.cols = cols
		for _, g := range s.grids {
			g.Layout = layout.NewGridLayoutWithColumns(cols)
			g.Refresh()
		}
	})
	if !s.surfaces.resize(cw, ch) {
		return
	}
	if err := s.d.Registry.RenderAll(); err != nil {
		s.logger.Warn("re-render after resize", zap.Error(err))
	}
	s.surfaces.blankEmpty()
}

// menus and shortcuts
func buildMenus(s *uiState) {
	if s == nil || s.window == nil {
		return
	}
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Reload", s.reload),
		fyne.NewMenuItem("Export All…", func() { exportAll(s) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { s.window.Close() }),
	)
	var viewItems []*fyne.MenuItem
	for _, sec := range s.sections {
		viewItems = append(viewItems, fyne.NewMenuItem(sec.Title(), func() { s.activate(sec) }))
	}
	viewItems = append(viewItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Diagnostics", func() { s.tabs.SelectIndex(len(s.sections)) }),
		fyne.NewMenuItem("Toggle Theme", s.toggleTheme),
	)
	s.window.SetMainMenu(fyne.NewMainMenu(fileMenu, fyne.NewMenu("View", viewItems...)))

	canv := s.window.Canvas()
	if canv == nil {
		return
	}
	for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { s.reload() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { s.window.Close() })
		for i, key := range []fyne.KeyName{fyne.Key1, fyne.Key2, fyne.Key3, fyne.Key4} {
			if i >= len(s.sections) {
				break
			}
			sec := s.sections[i]
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { s.activate(sec) })
		}
	}
}

// export PNG of one chart
func exportChartPNG(s *uiState, slot string) {
	if _, ok := s.d.Registry.Handle(slot); !ok {
		dialog.ShowInformation("Export", "No chart to export.", s.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := s.d.Registry.Export(slot, wc); err != nil {
			dialog.ShowError(err, s.window)
		}
	}, s.window)
	fs.SetFileName(slot + ".png")
	fs.Show()
}

// exportAll writes PNG, HTML and XLSX exports of every live chart into a chosen folder.
func exportAll(s *uiState) {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		go func() {
			paths, err := s.d.Export(dir.Path(), []string{config.FormatPNG, config.FormatHTML, config.FormatXLSX})
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, s.window)
				}
				if len(paths) > 0 {
					dialog.ShowInformation("Export", fmt.Sprintf("%d files written to %s", len(paths), uihelpers.TruncatePath(dir.Path(), 60)), s.window)
				}
			})
		}()
	}, s.window)
}
