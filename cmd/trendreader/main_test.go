package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

func readerConfig(t *testing.T) config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/game/year_distribution":
			fmt.Fprint(w, `{"labels":["2001","2002"],"data":[3,4]}`)
		case "/api/game/publisher_distribution":
			fmt.Fprint(w, `{"labels":["Nintendo"]}`)
		default:
			fmt.Fprint(w, `{"error":"no data"}`)
		}
	}))
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	return cfg
}

func TestRunReportsEveryChart(t *testing.T) {
	var buf bytes.Buffer
	failed, err := run(context.Background(), readerConfig(t), "", &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 13 {
		t.Fatalf("failed = %d want 13\n%s", failed, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "Total charts: 14, failed: 13") {
		t.Fatalf("summary missing:\n%s", out)
	}
	if !strings.Contains(out, "server: 12") || !strings.Contains(out, "shape: 1") {
		t.Fatalf("diagnostic counts missing:\n%s", out)
	}
}

func TestRunSectionFilter(t *testing.T) {
	var buf bytes.Buffer
	failed, err := run(context.Background(), readerConfig(t), types.SectionGame, &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if failed != 3 || !strings.Contains(out, "Total charts: 4, failed: 3") {
		t.Fatalf("game section: failed=%d\n%s", failed, out)
	}
	if strings.Contains(out, "movieByYear") {
		t.Fatalf("other section reported:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "game") && strings.Contains(line, "gameByYear") && !strings.Contains(line, " ok ") {
			t.Fatalf("gameByYear should be ok: %q", line)
		}
	}
}
