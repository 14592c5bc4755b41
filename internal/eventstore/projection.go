package eventstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	statusRunning   = "running"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// GenerationSummary is the read model of one generation.
type GenerationSummary struct {
	Generation  uint64     `json:"generation"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMS  int64      `json:"duration_ms,omitempty"`
	Warnings    int        `json:"warnings"`
	Errors      []string   `json:"errors,omitempty"`
	Broadcasts  int        `json:"broadcasts"`
	Delivered   int        `json:"delivered"`
}

// HistoryProjection keeps the most recent generation summaries in memory.
type HistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	byGen   map[uint64]*GenerationSummary
	history []*GenerationSummary // newest first
	maxSize int
}

// NewHistoryProjection creates a projection backed by store.
func NewHistoryProjection(store Store, maxSize int) *HistoryProjection {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &HistoryProjection{
		store:   store,
		byGen:   make(map[uint64]*GenerationSummary),
		history: make([]*GenerationSummary, 0, maxSize),
		maxSize: maxSize,
	}
}

// Rebuild reconstructs the projection from every stored event.
func (p *HistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Minute))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.byGen = make(map[uint64]*GenerationSummary)
	p.history = p.history[:0]
	p.mu.Unlock()
	for _, e := range events {
		p.Apply(e)
	}
	return nil
}

// Apply folds one event into the projection.
func (p *HistoryProjection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := e.Generation()
	s, ok := p.byGen[gen]
	if !ok {
		if e.Type() != TypeGenerationStarted {
			return
		}
		s = &GenerationSummary{Generation: gen, Status: statusRunning, StartedAt: e.Timestamp()}
		p.byGen[gen] = s
		p.history = append([]*GenerationSummary{s}, p.history...)
		if len(p.history) > p.maxSize {
			for _, old := range p.history[p.maxSize:] {
				delete(p.byGen, old.Generation)
			}
			p.history = p.history[:p.maxSize]
		}
		return
	}

	switch e.Type() {
	case TypeGenerationSucceeded:
		var d GenerationSucceededData
		_ = json.Unmarshal(e.Payload(), &d)
		ts := e.Timestamp()
		s.Status = statusSucceeded
		s.CompletedAt = &ts
		s.DurationMS = d.DurationMS
		s.Warnings = d.Warnings
	case TypeGenerationFailed:
		var d GenerationFailedData
		_ = json.Unmarshal(e.Payload(), &d)
		ts := e.Timestamp()
		s.Status = statusFailed
		s.CompletedAt = &ts
		s.DurationMS = d.DurationMS
		s.Warnings = d.Warnings
		s.Errors = d.Errors
	case TypeUpdatesBroadcast:
		var d UpdatesBroadcastData
		_ = json.Unmarshal(e.Payload(), &d)
		s.Broadcasts++
		s.Delivered += d.Delivered
	}
}

// Recent returns up to n summaries, newest first.
func (p *HistoryProjection) Recent(n int) []GenerationSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n <= 0 || n > len(p.history) {
		n = len(p.history)
	}
	out := make([]GenerationSummary, n)
	for i := 0; i < n; i++ {
		out[i] = *p.history[i]
		out[i].Errors = append([]string(nil), p.history[i].Errors...)
	}
	return out
}

// Get returns the summary for gen.
func (p *HistoryProjection) Get(gen uint64) (GenerationSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byGen[gen]
	if !ok {
		return GenerationSummary{}, false
	}
	return *s, true
}
