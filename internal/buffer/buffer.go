// Package buffer is the per-subject FIFO that sits between message
// delivery and the batch writer: many concurrent producers append under a
// per-subject lock; one consumer drains a bounded number of rows per tick.
package buffer

import (
	"sync"
	"time"
)

// Item is one buffered message payload, tagged with its subject. The row
// builder runs on it after it is drained.
type Item struct {
	Subject string
	Payload any
}

const rateWindow = 10 * time.Second

type rateSample struct {
	added     int64
	processed int64
	windowStart time.Time
}

// Buffer holds one FIFO queue per subject. Append takes only the owning
// subject's lock; Drain additionally takes the coarse subjectsMu to iterate
// and delete exhausted subjects, matching the locking discipline in
// spec.md §4.4.
type Buffer struct {
	subjectsMu sync.Mutex
	locks      map[string]*sync.Mutex
	queues     map[string][]any

	ratesMu sync.Mutex
	rates   map[string]*rateSample
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{
		locks:  make(map[string]*sync.Mutex),
		queues: make(map[string][]any),
		rates:  make(map[string]*rateSample),
	}
}

func (b *Buffer) lockFor(subject string) *sync.Mutex {
	b.subjectsMu.Lock()
	l, ok := b.locks[subject]
	if !ok {
		l = &sync.Mutex{}
		b.locks[subject] = l
	}
	b.subjectsMu.Unlock()
	return l
}

// Add appends payload to subject's queue.
func (b *Buffer) Add(subject string, payload any) {
	lock := b.lockFor(subject)
	lock.Lock()
	b.queues[subject] = append(b.queues[subject], payload)
	lock.Unlock()

	b.recordAdd(subject)
}

// Drain extracts at most limit items total across subjects in a single
// pass, preserving within-subject order. Exhausted subjects are removed
// from the subject set.
func (b *Buffer) Drain(limit int) []Item {
	b.subjectsMu.Lock()
	subjects := make([]string, 0, len(b.queues))
	for s := range b.queues {
		subjects = append(subjects, s)
	}
	b.subjectsMu.Unlock()

	var out []Item
	remaining := limit

	for _, subject := range subjects {
		if remaining <= 0 {
			break
		}
		lock := b.lockFor(subject)
		lock.Lock()
		q := b.queues[subject]
		if len(q) == 0 {
			lock.Unlock()
			continue
		}
		take := remaining
		if take > len(q) {
			take = len(q)
		}
		for _, payload := range q[:take] {
			out = append(out, Item{Subject: subject, Payload: payload})
		}
		rest := q[take:]
		b.subjectsMu.Lock()
		if len(rest) == 0 {
			delete(b.queues, subject)
		} else {
			b.queues[subject] = append([]any(nil), rest...)
		}
		b.subjectsMu.Unlock()
		lock.Unlock()

		remaining -= take
		b.recordProcessed(subject, take)
	}

	return out
}

// Size returns the total number of buffered items across all subjects.
func (b *Buffer) Size() int {
	b.subjectsMu.Lock()
	subjects := make([]string, 0, len(b.queues))
	for s := range b.queues {
		subjects = append(subjects, s)
	}
	b.subjectsMu.Unlock()

	total := 0
	for _, subject := range subjects {
		lock := b.lockFor(subject)
		lock.Lock()
		total += len(b.queues[subject])
		lock.Unlock()
	}
	return total
}

// SubjectSizes snapshots the current queue length per subject.
func (b *Buffer) SubjectSizes() map[string]int {
	b.subjectsMu.Lock()
	subjects := make([]string, 0, len(b.queues))
	for s := range b.queues {
		subjects = append(subjects, s)
	}
	b.subjectsMu.Unlock()

	sizes := make(map[string]int, len(subjects))
	for _, subject := range subjects {
		lock := b.lockFor(subject)
		lock.Lock()
		sizes[subject] = len(b.queues[subject])
		lock.Unlock()
	}
	return sizes
}

// FillRate is the add/process rate for a subject over the current sliding
// ~10s window, for observability (spec.md §4.4).
type FillRate struct {
	AddRate     float64
	ProcessRate float64
}

func (b *Buffer) recordAdd(subject string) {
	b.ratesMu.Lock()
	defer b.ratesMu.Unlock()
	s := b.rateFor(subject)
	s.added++
}

func (b *Buffer) recordProcessed(subject string, n int) {
	b.ratesMu.Lock()
	defer b.ratesMu.Unlock()
	s := b.rateFor(subject)
	s.processed += int64(n)
}

func (b *Buffer) rateFor(subject string) *rateSample {
	s, ok := b.rates[subject]
	now := time.Now()
	if !ok {
		s = &rateSample{windowStart: now}
		b.rates[subject] = s
		return s
	}
	if now.Sub(s.windowStart) > rateWindow {
		s.added, s.processed, s.windowStart = 0, 0, now
	}
	return s
}

// FillRates snapshots add/process-per-second for every subject that has
// ever recorded activity. A subject's window restarts only when it next
// records an add or a drain, so an idle subject keeps its old counts.
func (b *Buffer) FillRates() map[string]FillRate {
	b.ratesMu.Lock()
	defer b.ratesMu.Unlock()

	out := make(map[string]FillRate, len(b.rates))
	now := time.Now()
	for subject, s := range b.rates {
		elapsed := now.Sub(s.windowStart).Seconds()
		if elapsed <= 0 {
			elapsed = 1
		}
		out[subject] = FillRate{
			AddRate:     float64(s.added) / elapsed,
			ProcessRate: float64(s.processed) / elapsed,
		}
	}
	return out
}
