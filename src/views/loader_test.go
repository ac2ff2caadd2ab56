package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/statsapi"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// countingTarget wraps a registry and counts Render calls per slot.
type countingTarget struct {
	*registry.Registry
	mu      sync.Mutex
	renders map[string]int
}

func (c *countingTarget) Render(slot string, spec types.Spec) error {
	c.mu.Lock()
	if c.renders == nil {
		c.renders = map[string]int{}
	}
	c.renders[slot]++
	c.mu.Unlock()
	return c.Registry.Render(slot, spec)
}

func (c *countingTarget) count(slot string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders[slot]
}

type fixture struct {
	srv    *httptest.Server
	reg    *registry.Registry
	target *countingTarget
	rec    *diag.Recorder
	loader *Loader
	body   atomic.Value
}

func newFixture(t *testing.T, slots ...string) *fixture {
	t.Helper()
	f := &fixture{}
	f.body.Store(`{}`)
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.body.Load().(string))
	}))
	t.Cleanup(f.srv.Close)
	client, err := statsapi.NewClient(f.srv.URL, 2*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	f.reg = registry.New(render.New(render.ThemeLight), render.NewCanvasSet(480, 240, slots...))
	f.target = &countingTarget{Registry: f.reg}
	f.rec = diag.NewRecorder(zap.NewNop(), 0)
	f.loader = NewLoader(client, f.target, f.rec, zap.NewNop())
	return f
}

func TestLoadWellFormedRendersOnce(t *testing.T) {
	v := catalogView(t, "movieByYear")
	f := newFixture(t, v.Slot)
	f.body.Store(`{"labels":["2010","2011"],"data":[5,9]}`)

	out := f.loader.Load(context.Background(), v)
	if !out.OK() {
		t.Fatalf("Load: %v", out.Err)
	}
	if f.target.count(v.Slot) != 1 {
		t.Fatalf("renders = %d", f.target.count(v.Slot))
	}
	spec, ok := f.reg.Spec(v.Slot)
	if !ok {
		t.Fatalf("slot empty after a good load")
	}
	for _, d := range spec.Datasets {
		if len(d.Values) != len(spec.Labels) {
			t.Fatalf("dataset %s has %d values for %d labels", d.Label, len(d.Values), len(spec.Labels))
		}
	}
	if f.rec.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", f.rec.Entries())
	}
}

func TestLoadServerErrorLeavesSlotEmpty(t *testing.T) {
	v := catalogView(t, "movieByYear")
	f := newFixture(t, v.Slot)
	f.body.Store(`{"error":"no data"}`)

	out := f.loader.Load(context.Background(), v)
	var se *statsapi.ServerError
	if !errors.As(out.Err, &se) || se.Message != "no data" {
		t.Fatalf("expected server error, got %v", out.Err)
	}
	if f.target.count(v.Slot) != 0 || f.reg.Len() != 0 {
		t.Fatalf("slot rendered despite error payload")
	}
	entries := f.rec.ForSlot(v.Slot)
	if len(entries) != 1 || entries[0].Kind != diag.KindServer || entries[0].Endpoint != v.Endpoint {
		t.Fatalf("diagnostics = %+v", entries)
	}
}

func TestLoadMissingFieldRecordsShapeDiagnostic(t *testing.T) {
	v := catalogView(t, "movieratingyear")
	f := newFixture(t, v.Slot)
	f.body.Store(`{"genres":["Drama"],"counts":[10]}`)

	out := f.loader.Load(context.Background(), v)
	if out.OK() || Classify(out.Err) != diag.KindShape {
		t.Fatalf("expected shape failure, got %v", out.Err)
	}
	if f.target.count(v.Slot) != 0 {
		t.Fatalf("render called for malformed payload")
	}
	if c := f.rec.Counts(); c[diag.KindShape] != 1 {
		t.Fatalf("counts = %v", c)
	}
}

func TestLoadTwiceKeepsOnlySecondPayload(t *testing.T) {
	v := catalogView(t, "gameByYear")
	f := newFixture(t, v.Slot)
	f.body.Store(`{"labels":["2010","2011"],"data":[5,9]}`)
	if out := f.loader.Load(context.Background(), v); !out.OK() {
		t.Fatalf("first load: %v", out.Err)
	}
	f.body.Store(`{"labels":["2012","2013","2014"],"data":[1,2,3]}`)
	if out := f.loader.Load(context.Background(), v); !out.OK() {
		t.Fatalf("second load: %v", out.Err)
	}
	if f.reg.Len() != 1 {
		t.Fatalf("live charts = %d", f.reg.Len())
	}
	spec, _ := f.reg.Spec(v.Slot)
	if len(spec.Labels) != 3 || spec.Labels[0] != "2012" || spec.Datasets[0].Values[2] != 3 {
		t.Fatalf("live spec = %v %v", spec.Labels, spec.Datasets[0].Values)
	}
}

func TestLoadFailureAfterSuccessClearsStaleChart(t *testing.T) {
	v := catalogView(t, "gameByYear")
	f := newFixture(t, v.Slot)
	f.body.Store(`{"labels":["2010"],"data":[5]}`)
	f.loader.Load(context.Background(), v)
	f.body.Store(`{"error":"backend down"}`)
	if out := f.loader.Load(context.Background(), v); out.OK() {
		t.Fatalf("expected failure")
	}
	if _, ok := f.reg.Handle(v.Slot); ok {
		t.Fatalf("stale chart still live")
	}
}

func TestLoadMissingSurface(t *testing.T) {
	v := catalogView(t, "gameByYear")
	f := newFixture(t)
	f.body.Store(`{"labels":["2010"],"data":[5]}`)
	out := f.loader.Load(context.Background(), v)
	if !errors.Is(out.Err, registry.ErrTargetMissing) || Classify(out.Err) != diag.KindTargetMissing {
		t.Fatalf("expected target missing, got %v", out.Err)
	}
}

type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, string) (statsapi.Payload, error) { panic("bad plumbing") }

func TestLoadRecoversPanics(t *testing.T) {
	rec := diag.NewRecorder(zap.NewNop(), 0)
	reg := registry.New(render.New(render.ThemeLight), render.NewCanvasSet(100, 100, "movieByYear"))
	l := NewLoader(panicFetcher{}, reg, rec, nil)
	out := l.Load(context.Background(), catalogView(t, "movieByYear"))
	var pe *PanicError
	if !errors.As(out.Err, &pe) || pe.Value != "bad plumbing" {
		t.Fatalf("expected PanicError, got %v", out.Err)
	}
	if rec.Counts()[diag.KindPanic] != 1 {
		t.Fatalf("panic not recorded: %+v", rec.Entries())
	}
}

type routeFetcher map[string]string

func (r routeFetcher) Fetch(_ context.Context, endpoint string) (statsapi.Payload, error) {
	body, ok := r[endpoint]
	if !ok {
		return nil, &statsapi.TransportError{Endpoint: endpoint, Status: http.StatusNotFound, Err: errors.New("not found")}
	}
	var p statsapi.Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, err
	}
	if p.Has("error") {
		return nil, &statsapi.ServerError{Endpoint: endpoint, Status: http.StatusOK, Message: string(p["error"])}
	}
	return p, nil
}

func TestLoadAllIsolatesFailures(t *testing.T) {
	vs, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	vs = InSection(vs, types.SectionCombined)
	fetch := routeFetcher{
		"/api/combined/genre_distribution":  `{"labels":["Action"],"anime_data":[1],"movie_data":[2],"game_data":[3]}`,
		"/api/combined/avg_rating_by_genre": `{"error":"no data"}`,
		"/api/combined/titles_by_year":      `{"labels":["2000","2001"],"movies":[1,2]}`,
	}
	rec := diag.NewRecorder(zap.NewNop(), 0)
	reg := registry.New(render.New(render.ThemeDark), render.NewCanvasSet(400, 200, Slots(vs)...))
	outcomes := NewLoader(fetch, reg, rec, zap.NewNop()).LoadAll(context.Background(), vs).Wait()

	if len(outcomes) != len(vs) {
		t.Fatalf("outcomes = %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Slot != vs[i].Slot {
			t.Fatalf("outcome %d is %s, want %s", i, o.Slot, vs[i].Slot)
		}
	}
	if !outcomes[0].OK() {
		t.Fatalf("good view failed: %v", outcomes[0].Err)
	}
	want := map[diag.Kind]int{diag.KindServer: 1, diag.KindShape: 1, diag.KindTransport: 1}
	got := rec.Counts()
	for k, n := range want {
		if got[k] != n {
			t.Fatalf("diagnostics by kind = %v", got)
		}
	}
	if slots := reg.Slots(); len(slots) != 1 || slots[0] != "combinedGenreDistribution" {
		t.Fatalf("live slots = %v", slots)
	}
}
