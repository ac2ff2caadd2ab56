// trendreader fetches every chart once and prints per-chart outcomes and
// diagnostic counts. It exits non-zero when any chart failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
	"github.com/iafilius/MediaTrendsDashboard/src/views"
)

func main() {
	var (
		configPath string
		baseURL    string
		sectionArg string
		timeout    time.Duration
	)
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults built in)")
	flag.StringVar(&baseURL, "api", "", "analytics backend base URL (overrides config)")
	flag.StringVar(&sectionArg, "section", "", "only report charts of this section")
	flag.DurationVar(&timeout, "timeout", 0, "per-request timeout (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.API.Timeout = timeout
	}
	var only types.Section
	if sectionArg != "" {
		s, ok := types.ParseSection(sectionArg)
		if !ok {
			fmt.Fprintf(os.Stderr, "error: unknown section %q\n", sectionArg)
			os.Exit(2)
		}
		only = s
	}
	failed, err := run(context.Background(), cfg, only, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(3)
	}
}

// run loads the catalog once and writes a report to w. It returns the number
// of failed charts among those reported.
func run(ctx context.Context, cfg config.Config, only types.Section, w io.Writer) (int, error) {
	d, err := dashboard.New(cfg, zap.NewNop(), nil)
	if err != nil {
		return 0, err
	}
	out := d.Refresh(ctx)
	sectionOf := map[string]types.Section{}
	for _, v := range d.Views() {
		sectionOf[v.Slot] = v.Section
	}
	failed, total := 0, 0
	for _, o := range out {
		if only != "" && sectionOf[o.Slot] != only {
			continue
		}
		total++
		status := "ok"
		if !o.OK() {
			failed++
			status = string(views.Classify(o.Err))
		}
		fmt.Fprintf(w, "%-9s %-26s %-15s %6dms", sectionOf[o.Slot], o.Slot, status, o.Took.Milliseconds())
		if !o.OK() {
			fmt.Fprintf(w, "  %s", o.Error())
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total charts: %d, failed: %d\n", total, failed)

	counts := map[diag.Kind]int{}
	for _, e := range d.Diag.Entries() {
		if only != "" && sectionOf[e.Slot] != only {
			continue
		}
		counts[e.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "%s: %d\n", k, counts[diag.Kind(k)])
	}
	return failed, nil
}
