// Package dashboard wires the chart registry, section controller, backend
// client and view catalog into one object shared by every front end.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/report"
	"github.com/iafilius/MediaTrendsDashboard/src/section"
	"github.com/iafilius/MediaTrendsDashboard/src/statsapi"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
	"github.com/iafilius/MediaTrendsDashboard/src/views"
)

// Title is used for page and report headings.
const Title = "Media Trends Dashboard"

type Dashboard struct {
	cfg    config.Config
	logger *zap.Logger

	Diag     *diag.Recorder
	Client   *statsapi.Client
	Renderer *render.Renderer
	Registry *registry.Registry
	Sections *section.Controller
	Canvases *render.CanvasSet // nil when surfaces were supplied by the caller

	views  []views.View
	loader *views.Loader

	mu       sync.Mutex
	lastLoad time.Time
	outcomes []views.Outcome
}

// New builds a dashboard. With a nil provider, headless canvases sized from
// cfg are created for every view slot.
func New(cfg config.Config, logger *zap.Logger, surfaces registry.SurfaceProvider) (*Dashboard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	vs, err := views.LoadCatalog(cfg.Dashboard.ViewsFile)
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	client, err := statsapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Named("statsapi"))
	if err != nil {
		return nil, err
	}
	sections, err := section.New(types.AllSections(), cfg.Section(), section.NavControls(types.AllSections())...)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		cfg:      cfg,
		logger:   logger,
		Diag:     diag.NewRecorder(logger.Named("diag"), diag.DefaultCapacity),
		Client:   client,
		Renderer: render.New(render.ParseTheme(cfg.Dashboard.Theme)),
		Sections: sections,
		views:    vs,
	}
	d.Renderer.SetHints(cfg.Dashboard.ShowHints)
	if surfaces == nil {
		d.Canvases = render.NewCanvasSet(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight, views.Slots(vs)...)
		surfaces = d.Canvases
	}
	d.Registry = registry.New(d.Renderer, surfaces)
	d.loader = views.NewLoader(client, d.Registry, d.Diag, logger.Named("views"))
	sections.OnChange(func(prev, next types.Section) {
		logger.Debug("section activated", zap.String("from", string(prev)), zap.String("to", string(next)))
	})
	return d, nil
}

func (d *Dashboard) Config() config.Config { return d.cfg }

// Views returns the catalog in display order.
func (d *Dashboard) Views() []views.View { return append([]views.View(nil), d.views...) }

func (d *Dashboard) ViewsIn(s types.Section) []views.View { return views.InSection(d.views, s) }

// Load starts one routine per view and returns without waiting.
func (d *Dashboard) Load(ctx context.Context) *views.Batch {
	b := d.loader.LoadAll(ctx, d.views)
	go d.remember(b)
	return b
}

// Refresh loads every view and waits for all of them.
func (d *Dashboard) Refresh(ctx context.Context) []views.Outcome {
	start := time.Now()
	out := d.loader.LoadAll(ctx, d.views).Wait()
	d.store(out)
	failed := 0
	for _, o := range out {
		if !o.OK() {
			failed++
		}
	}
	d.logger.Info("dashboard refreshed",
		zap.Int("views", len(out)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)),
	)
	return out
}

// LoadView reloads a single slot.
func (d *Dashboard) LoadView(ctx context.Context, slot string) (views.Outcome, error) {
	v, ok := views.Find(d.views, slot)
	if !ok {
		return views.Outcome{}, fmt.Errorf("unknown chart %q", slot)
	}
	return d.loader.Load(ctx, v), nil
}

func (d *Dashboard) remember(b *views.Batch) { d.store(b.Wait()) }

func (d *Dashboard) store(out []views.Outcome) {
	d.mu.Lock()
	d.outcomes = out
	d.lastLoad = time.Now()
	d.mu.Unlock()
}

// LastLoad returns the outcomes of the most recent completed load.
func (d *Dashboard) LastLoad() (time.Time, []views.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastLoad, append([]views.Outcome(nil), d.outcomes...)
}

func (d *Dashboard) Theme() render.Theme { return d.Renderer.Theme() }

// SetTheme switches the theme and re-renders every live chart.
func (d *Dashboard) SetTheme(t render.Theme) error {
	if d.Renderer.Theme() == t {
		return nil
	}
	d.Renderer.SetTheme(t)
	return d.Registry.RenderAll()
}

func (d *Dashboard) ToggleTheme() (render.Theme, error) {
	next := d.Renderer.Theme().Toggle()
	return next, d.SetTheme(next)
}

func (d *Dashboard) Hints() bool { return d.Renderer.Hints() }

// SetHints toggles the hint overlay and re-renders every live chart.
func (d *Dashboard) SetHints(on bool) error {
	if d.Renderer.Hints() == on {
		return nil
	}
	d.Renderer.SetHints(on)
	return d.Registry.RenderAll()
}

// Entries returns the live charts in catalog order for the report writers.
func (d *Dashboard) Entries() []report.Entry {
	var out []report.Entry
	for _, v := range d.views {
		spec, ok := d.Registry.Spec(v.Slot)
		if !ok {
			continue
		}
		out = append(out, report.Entry{Section: v.Section, Slot: v.Slot, Spec: spec})
	}
	return out
}

// Export writes the requested formats into dir and returns the written paths.
func (d *Dashboard) Export(dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var (
		paths []string
		errs  []error
	)
	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case config.FormatPNG:
			p, err := report.ExportPNGs(d.Registry, dir)
			paths = append(paths, p...)
			if err != nil {
				errs = append(errs, err)
			}
		case config.FormatHTML:
			path := filepath.Join(dir, "dashboard.html")
			if err := writeFile(path, func(f *os.File) error {
				return report.WriteHTML(f, Title, d.Theme(), d.Entries())
			}); err != nil {
				errs = append(errs, fmt.Errorf("html: %w", err))
				continue
			}
			paths = append(paths, path)
		case config.FormatXLSX:
			path := filepath.Join(dir, "dashboard.xlsx")
			if err := writeFile(path, func(f *os.File) error {
				return report.WriteWorkbook(f, d.Entries())
			}); err != nil {
				errs = append(errs, fmt.Errorf("xlsx: %w", err))
				continue
			}
			paths = append(paths, path)
		default:
			errs = append(errs, fmt.Errorf("unknown export format %q", format))
		}
	}
	for _, p := range paths {
		d.logger.Info("exported", zap.String("path", p))
	}
	return paths, errors.Join(errs...)
}

func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
