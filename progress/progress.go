package progress

import (
	"context"
	"sync"
	"time"
)

// Delta is an incremental counter change; fields may be negative.
type Delta struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Running   int
}

// State is a lock-free copy of the run counters.
type State struct {
	RunID     string
	Flows     []string
	StartedAt time.Time

	TotalUnits     int
	CompletedUnits int
	SkippedUnits   int
	FailedUnits    int
	RunningUnits   int
}

// Progress keeps aggregated unit counters of a run and its sub runs. It is safe for concurrent use.
type Progress struct {
	State
	mu       sync.Mutex
	onChange func(State)
}

// Update applies d and notifies the change callback outside the lock.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.TotalUnits += d.Total
	p.CompletedUnits += d.Completed
	p.SkippedUnits += d.Skipped
	p.FailedUnits += d.Failed
	p.RunningUnits += d.Running
	snapshot := p.State
	cb := p.onChange
	p.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() State {
	if p == nil {
		return State{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.State
}

// OnChange registers the callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(State)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker embeds a new tracker in a derived context. A context already carrying
// a tracker keeps it so sub runs add to the root counters.
func WithNewTracker(ctx context.Context, runID string, flows []string, onChange func(State)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	if existing, ok := FromContext(ctx); ok {
		return ctx, existing
	}
	tr := &Progress{State: State{RunID: runID, Flows: flows, StartedAt: time.Now()}, onChange: onChange}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
