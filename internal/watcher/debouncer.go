package watcher

import (
	"slices"
	"sync"
	"time"
)

// BatchDebouncer collects events and emits them as a batch once no new
// event has arrived for the delay, or once the oldest pending event has
// waited maxWait. Events are coalesced per path: a batch holds the latest
// event of each path, in order of first arrival.
type BatchDebouncer struct {
	delay   time.Duration
	maxWait time.Duration
	timer   *time.Timer
	first   time.Time
	mu      sync.Mutex
	events  []Event
	index   map[string]int
	emit    func([]Event)
}

// NewBatchDebouncer creates a new batch debouncer. A maxWait of zero never
// forces a flush.
func NewBatchDebouncer(delay, maxWait time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:   delay,
		maxWait: maxWait,
		index:   make(map[string]int),
		emit:    emit,
	}
}

// Add adds an event to the batch
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i, ok := b.index[event.Path]; ok {
		b.events[i] = event
	} else {
		if len(b.events) == 0 {
			b.first = time.Now()
		}
		b.index[event.Path] = len(b.events)
		b.events = append(b.events, event)
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	wait := b.delay
	if b.maxWait > 0 {
		if left := b.maxWait - time.Since(b.first); left < wait {
			wait = max(left, 0)
		}
	}
	b.timer = time.AfterFunc(wait, b.flush)
}

// take removes and returns the pending events.
func (b *BatchDebouncer) take() []Event {
	events := b.events
	b.events = nil
	b.index = make(map[string]int)
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return events
}

func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	events := b.take()
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops pending events without emitting them
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.take()
}

// Flush immediately emits any pending events
func (b *BatchDebouncer) Flush() {
	b.flush()
}

// EventCount returns the number of pending paths
func (b *BatchDebouncer) EventCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Paths returns the distinct paths of events that still point at a file,
// sorted. A path whose last event is a delete or rename is left out.
func Paths(events []Event) []string {
	last := make(map[string]EventType, len(events))
	for _, e := range events {
		last[e.Path] = e.Type
	}

	out := make([]string, 0, len(last))
	for p, t := range last {
		if t != EventDelete && t != EventRename {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
