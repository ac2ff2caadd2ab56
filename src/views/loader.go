package views

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/statsapi"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

// Fetcher retrieves one endpoint's payload.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) (statsapi.Payload, error)
}

// Target receives derived specs. *registry.Registry satisfies it.
type Target interface {
	Render(slotID string, spec types.Spec) error
	Clear(slotID string) bool
}

// PanicError is a recovered panic from a view routine.
type PanicError struct {
	Slot  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic in %s: %v", e.Slot, e.Value) }

// Outcome is the result of one view routine.
type Outcome struct {
	Slot     string        `json:"slot"`
	Endpoint string        `json:"endpoint"`
	Err      error         `json:"-"`
	Took     time.Duration `json:"took"`
}

func (o Outcome) OK() bool { return o.Err == nil }

// Error returns the failure message, or "" on success.
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

type Loader struct {
	fetch  Fetcher
	target Target
	diag   *diag.Recorder
	logger *zap.Logger
}

func NewLoader(f Fetcher, t Target, rec *diag.Recorder, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = diag.NewRecorder(logger, 0)
	}
	return &Loader{fetch: f, target: t, diag: rec, logger: logger}
}

// Load runs fetch, derive and render for v. Failures are recorded as
// diagnostics and leave the slot empty; they never propagate as panics.
func (l *Loader) Load(ctx context.Context, v View) (out Outcome) {
	start := time.Now()
	out = Outcome{Slot: v.Slot, Endpoint: v.Endpoint}
	defer func() {
		if r := recover(); r != nil {
			out.Err = &PanicError{Slot: v.Slot, Value: r, Stack: debug.Stack()}
		}
		out.Took = time.Since(start)
		if out.Err != nil {
			l.fail(v, out.Err)
			return
		}
		l.logger.Debug("chart rendered",
			zap.String("slot", v.Slot),
			zap.String("endpoint", v.Endpoint),
			zap.Duration("took", out.Took),
		)
	}()
	out.Err = l.load(ctx, v)
	return out
}

func (l *Loader) load(ctx context.Context, v View) error {
	p, err := l.fetch.Fetch(ctx, v.Endpoint)
	if err != nil {
		return err
	}
	spec, err := Derive(v, p)
	if err != nil {
		return err
	}
	return l.target.Render(v.Slot, spec)
}

func (l *Loader) fail(v View, err error) {
	kind := Classify(err)
	if kind != diag.KindTargetMissing {
		l.target.Clear(v.Slot)
	}
	l.diag.Record(diag.Entry{
		Slot:     v.Slot,
		Endpoint: v.Endpoint,
		Kind:     kind,
		Message:  err.Error(),
	})
}

// Classify maps a view error to its diagnostic kind.
func Classify(err error) diag.Kind {
	var (
		te *statsapi.TransportError
		se *statsapi.ServerError
		sh *statsapi.ShapeError
		pe *PanicError
		re *registry.RenderError
	)
	switch {
	case errors.As(err, &pe):
		return diag.KindPanic
	case errors.As(err, &se):
		return diag.KindServer
	case errors.As(err, &sh):
		return diag.KindShape
	case errors.Is(err, registry.ErrTargetMissing):
		return diag.KindTargetMissing
	case errors.As(err, &re):
		return diag.KindRender
	case errors.As(err, &te), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return diag.KindTransport
	}
	return diag.KindRender
}

// Batch tracks one LoadAll run.
type Batch struct {
	wg       sync.WaitGroup
	outcomes []Outcome
}

// Wait blocks until every routine finished and returns the outcomes in the
// order the views were given.
func (b *Batch) Wait() []Outcome {
	b.wg.Wait()
	return append([]Outcome(nil), b.outcomes...)
}

// LoadAll starts one independent routine per view. Callers that do not need
// the results may drop the batch.
func (l *Loader) LoadAll(ctx context.Context, vs []View) *Batch {
	b := &Batch{outcomes: make([]Outcome, len(vs))}
	b.wg.Add(len(vs))
	for i, v := range vs {
		go func(i int, v View) {
			defer b.wg.Done()
			b.outcomes[i] = l.Load(ctx, v)
		}(i, v)
	}
	return b
}
