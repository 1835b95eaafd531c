// Package event provides the sinks that receive domain events from the use cases.
package event

import (
	"context"
	"sync"

	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

// LogSink writes every event to the context logger
type LogSink struct{}

var _ interfaces.EventSink = &LogSink{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Record(ctx context.Context, ev *model.Event) {
	logging.From(ctx).Info("risk event",
		"type", ev.Type.String(),
		"tenant_id", ev.TenantID,
		"actor_id", ev.ActorID,
		"entity", ev.Entity,
		"entity_id", ev.EntityID,
		"diff", ev.Diff,
	)
}

// Fanout forwards each event to every sink in order
type Fanout struct {
	sinks []interfaces.EventSink
}

var _ interfaces.EventSink = &Fanout{}

// NewFanout combines sinks. Nil sinks are skipped.
func NewFanout(sinks ...interfaces.EventSink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Record(ctx context.Context, ev *model.Event) {
	for _, s := range f.sinks {
		s.Record(ctx, ev)
	}
}

// DefaultRecorderCapacity is the number of events a Recorder keeps unless WithCapacity is given
const DefaultRecorderCapacity = 1000

// Recorder keeps the most recent events in memory, newest last. The oldest event is dropped once
// the capacity is reached.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	events   []*model.Event
}

var _ interfaces.EventSink = &Recorder{}

// RecorderOption configures Recorder
type RecorderOption func(*Recorder)

// WithCapacity sets how many events are kept. Values below 1 keep the default.
func WithCapacity(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{capacity: DefaultRecorderCapacity}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Record(ctx context.Context, ev *model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) >= r.capacity {
		n := copy(r.events, r.events[len(r.events)-r.capacity+1:])
		clear(r.events[n:])
		r.events = r.events[:n]
	}
	r.events = append(r.events, copyEvent(ev))
}

// Events returns the kept events of the tenant. An empty tenantID returns every event.
func (r *Recorder) Events(tenantID string) []*model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Event, 0, len(r.events))
	for _, ev := range r.events {
		if tenantID == "" || ev.TenantID == tenantID {
			result = append(result, copyEvent(ev))
		}
	}
	return result
}

// ByType returns recorded events with the given type
func (r *Recorder) ByType(t types.EventType) []*model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Event
	for _, ev := range r.events {
		if ev.Type == t {
			result = append(result, copyEvent(ev))
		}
	}
	return result
}

// Last returns the most recent event, or nil
func (r *Recorder) Last() *model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return nil
	}
	return copyEvent(r.events[len(r.events)-1])
}

func copyEvent(ev *model.Event) *model.Event {
	c := *ev
	if ev.Diff != nil {
		c.Diff = make(map[string]any, len(ev.Diff))
		for k, v := range ev.Diff {
			c.Diff[k] = v
		}
	}
	return &c
}
