package main

import (
	"context"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
)

func backend(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case healthy && r.URL.Path == "/api/movie/year_distribution":
			fmt.Fprint(w, `{"labels":["2019","2020","2021"],"data":[40,52,61]}`)
		case healthy && r.URL.Path == "/api/game/year_distribution":
			fmt.Fprint(w, `{"labels":["2001","2002"],"data":[3,4]}`)
		default:
			fmt.Fprint(w, `{"error":"no data"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func screenshotConfig(url string) config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = url
	cfg.Dashboard.ChartWidth = 640
	cfg.Dashboard.ChartHeight = 300
	return cfg
}

func TestRunScreenshotsModeWritesLiveCharts(t *testing.T) {
	srv := backend(t, true)
	dir := filepath.Join(t.TempDir(), "shots")
	paths, err := RunScreenshotsMode(context.Background(), screenshotConfig(srv.URL), zap.NewNop(), dir)
	if err != nil {
		t.Fatalf("RunScreenshotsMode: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 images, got %v", paths)
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", p, err)
		}
		if img.Bounds().Dx() != 640 {
			t.Fatalf("%s width = %d", p, img.Bounds().Dx())
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("failed charts must not leave files, found %d", len(entries))
	}
}

func TestRunScreenshotsModeFailsWithoutCharts(t *testing.T) {
	srv := backend(t, false)
	if _, err := RunScreenshotsMode(context.Background(), screenshotConfig(srv.URL), zap.NewNop(), t.TempDir()); err == nil {
		t.Fatalf("expected error when every chart fails")
	}
}
