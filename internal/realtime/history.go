package realtime

import "time"

// history is a bounded FIFO of recent per-frame values.
type history[T any] struct {
	values []T
	limit  int
}

func newHistory[T any](limit int) *history[T] {
	return &history[T]{values: make([]T, 0, limit), limit: limit}
}

func (h *history[T]) push(v T) {
	if len(h.values) == h.limit {
		copy(h.values, h.values[1:])
		h.values = h.values[:h.limit-1]
	}
	h.values = append(h.values, v)
}

func (h *history[T]) len() int { return len(h.values) }

// last returns up to n of the most recent values
func (h *history[T]) last(n int) []T {
	if n > len(h.values) {
		n = len(h.values)
	}
	return h.values[len(h.values)-n:]
}

func (h *history[T]) clear() { h.values = h.values[:0] }

// streak tracks how long a condition has held without interruption.
type streak struct {
	since time.Time
	fired bool
}

// observe records the condition at now and reports whether the streak just
// reached limit. A streak fires once; breaking it re-arms it.
func (s *streak) observe(active bool, now time.Time, limit time.Duration) bool {
	if !active {
		*s = streak{}
		return false
	}
	if s.since.IsZero() {
		s.since = now
	}
	if !s.fired && now.Sub(s.since) >= limit {
		s.fired = true
		return true
	}
	return false
}
