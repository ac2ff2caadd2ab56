// Package diag is the diagnostics channel: every per-view failure lands here
// and is mirrored to the structured log.
package diag

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindTransport     Kind = "transport"
	KindServer        Kind = "server"
	KindShape         Kind = "shape"
	KindTargetMissing Kind = "target_missing"
	KindRender        Kind = "render"
	KindPanic         Kind = "panic"
)

// DefaultCapacity bounds the in-memory history.
const DefaultCapacity = 256

type Entry struct {
	Time     time.Time `json:"time"`
	Slot     string    `json:"slot"`
	Endpoint string    `json:"endpoint,omitempty"`
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
}

type Recorder struct {
	logger   *zap.Logger
	capacity int

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns a recorder keeping the most recent capacity entries.
func NewRecorder(logger *zap.Logger, capacity int) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{logger: logger, capacity: capacity}
}

// Record stores e and logs it at error level.
func (r *Recorder) Record(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	r.logger.Error("chart load failed",
		zap.String("slot", e.Slot),
		zap.String("endpoint", e.Endpoint),
		zap.String("kind", string(e.Kind)),
		zap.String("message", e.Message),
	)
	r.mu.Lock()
	r.entries = append(r.entries, e)
	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append([]Entry(nil), r.entries[over:]...)
	}
	r.mu.Unlock()
}

// Entries returns a copy, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) ForSlot(slot string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Slot == slot {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Counts groups the stored entries by kind.
func (r *Recorder) Counts() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[Kind]int{}
	for _, e := range r.entries {
		out[e.Kind]++
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}
