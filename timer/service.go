// Package timer schedules script wake-ups and delivers them to the session
// loop as events, so callbacks always run on the goroutine that owns the
// grid.
//
// Delivery never blocks the clock. When the session queue is full a
// one-shot is retried shortly after, and the ticks of a repeating timer are
// folded into its next delivery and reported as Missed.
package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MinInterval is the shortest repeat interval Every accepts.
const MinInterval = 10 * time.Millisecond

// retryDelay spaces out redelivery of a one-shot the session could not take.
const retryDelay = 10 * time.Millisecond

// Event is sent when a timer fires.
type Event struct {
	ID        int
	Repeating bool
	Missed    int // Earlier ticks folded into this one
}

// Service hands out timer IDs and fires them into an event channel.
// Repeating timers run at a fixed rate measured from when they were
// scheduled, so a slow session does not make them drift.
type Service struct {
	events chan<- Event

	mu     sync.Mutex
	timers map[int]*entry
	nextID int

	missed atomic.Uint64
	log    *logrus.Entry
}

type entry struct {
	interval time.Duration // 0 for a one-shot
	due      time.Time     // Deadline of the pending tick
	pending  int           // Ticks not yet delivered
	timer    *time.Timer
}

// NewService creates a timer service that sends fired timers to events.
func NewService(events chan<- Event) *Service {
	return &Service{
		events: events,
		timers: make(map[int]*entry),
		log:    logrus.WithField("component", "timer"),
	}
}

// After schedules a one-shot timer and returns its ID. Negative durations
// fire immediately.
func (s *Service) After(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return s.schedule(d, 0)
}

// Every schedules a repeating timer and returns its ID. Intervals below
// MinInterval are raised to it.
func (s *Service) Every(d time.Duration) int {
	if d < MinInterval {
		d = MinInterval
	}
	return s.schedule(d, d)
}

// Cancel stops a timer. Unknown IDs are ignored.
func (s *Service) Cancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[id]; ok {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// CancelAll stops every timer.
func (s *Service) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// Active returns the number of timers that have not finished.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Missed returns how many deliveries found the session queue full.
func (s *Service) Missed() uint64 {
	return s.missed.Load()
}

func (s *Service) schedule(d, interval time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID

	s.timers[id] = &entry{
		interval: interval,
		due:      time.Now().Add(d),
		timer:    time.AfterFunc(d, func() { s.fire(id) }),
	}
	return id
}

func (s *Service) fire(id int) {
	s.mu.Lock()
	e, ok := s.timers[id]
	if !ok {
		s.mu.Unlock()
		return
	}

	if e.interval == 0 {
		s.mu.Unlock()
		s.fireOnce(id, e)
		return
	}

	// Advance to the next deadline after now; ticks skipped on the way
	// count as missed.
	e.pending++
	now := time.Now()
	e.due = e.due.Add(e.interval)
	for !e.due.After(now) {
		e.due = e.due.Add(e.interval)
		e.pending++
	}
	e.timer = time.AfterFunc(e.due.Sub(now), func() { s.fire(id) })

	ev := Event{ID: id, Repeating: true, Missed: e.pending - 1}
	e.pending = 0
	s.mu.Unlock()

	select {
	case s.events <- ev:
	default:
		s.missed.Add(1)
		s.mu.Lock()
		if cur, ok := s.timers[id]; ok && cur == e {
			e.pending += ev.Missed + 1
		}
		s.mu.Unlock()
		s.log.WithField("timer", id).Debug("Session busy, tick folded into the next")
	}
}

// fireOnce delivers a one-shot, retrying until the session takes it or the
// timer is cancelled.
func (s *Service) fireOnce(id int, e *entry) {
	select {
	case s.events <- Event{ID: id}:
		s.mu.Lock()
		if cur, ok := s.timers[id]; ok && cur == e {
			delete(s.timers, id)
		}
		s.mu.Unlock()
	default:
		s.missed.Add(1)
		s.mu.Lock()
		if cur, ok := s.timers[id]; ok && cur == e {
			e.timer = time.AfterFunc(retryDelay, func() { s.fire(id) })
		}
		s.mu.Unlock()
		s.log.WithField("timer", id).Warn("Session busy, retrying timer")
	}
}
