package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
)

// RunScreenshotsMode loads every chart onto headless canvases and writes one PNG
// per live chart under outDir. It runs without creating a UI window and fails
// only when no chart could be loaded at all.
func RunScreenshotsMode(ctx context.Context, cfg config.Config, logger *zap.Logger, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	d, err := dashboard.New(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	out := d.Refresh(ctx)
	live := 0
	for _, o := range out {
		if o.OK() {
			live++
		}
	}
	if live == 0 {
		return nil, errors.New("no chart could be loaded")
	}
	return d.Export(outDir, []string{config.FormatPNG})
}
