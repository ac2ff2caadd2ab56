// Package report exports live charts: raster PNGs, an interactive HTML page
// and a spreadsheet with the underlying data.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// Entry is one live chart with the section it belongs to.
type Entry struct {
	Section types.Section
	Slot    string
	Spec    types.Spec
}

// Exporter is the export control of a chart registry.
type Exporter interface {
	Slots() []string
	Export(slotID string, w io.Writer) error
}

// ExportPNGs writes <slot>.png into dir for every live chart and returns the
// written paths. A failing slot does not stop the others.
func ExportPNGs(ex Exporter, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var (
		paths []string
		errs  []error
	)
	for _, slot := range ex.Slots() {
		path := filepath.Join(dir, slot+".png")
		if err := exportOne(ex, slot, path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", slot, err))
			continue
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}

func exportOne(ex Exporter, slot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ex.Export(slot, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// grouped orders entries by section navigation order, keeping the input order
// inside a section.
func grouped(entries []Entry) [][]Entry {
	var out [][]Entry
	for _, s := range types.AllSections() {
		var g []Entry
		for _, e := range entries {
			if e.Section == s {
				g = append(g, e)
			}
		}
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// cellValue maps the null marker to nil.
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
