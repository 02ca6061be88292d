package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
		return Event{}
	}
}

func TestAfterFiresOnce(t *testing.T) {
	ch := make(chan Event, 4)
	s := NewService(ch)

	id := s.After(5 * time.Millisecond)
	ev := waitEvent(t, ch)
	assert.Equal(t, id, ev.ID)
	assert.False(t, ev.Repeating)
	assert.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, time.Millisecond)
}

func TestEveryRepeatsUntilCancelled(t *testing.T) {
	ch := make(chan Event, 16)
	s := NewService(ch)

	id := s.Every(5 * time.Millisecond)
	for i := 0; i < 3; i++ {
		ev := waitEvent(t, ch)
		require.Equal(t, id, ev.ID)
		assert.True(t, ev.Repeating)
	}

	s.Cancel(id)
	assert.Equal(t, 0, s.Active())
}

func TestCancelBeforeFire(t *testing.T) {
	ch := make(chan Event, 1)
	s := NewService(ch)

	id := s.After(50 * time.Millisecond)
	s.Cancel(id)

	select {
	case ev := <-ch:
		t.Fatalf("cancelled timer fired: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelAll(t *testing.T) {
	ch := make(chan Event, 1)
	s := NewService(ch)

	s.After(time.Hour)
	s.Every(time.Hour)
	assert.Equal(t, 2, s.Active())

	s.CancelAll()
	assert.Equal(t, 0, s.Active())
}

func TestEveryRaisesShortInterval(t *testing.T) {
	ch := make(chan Event, 4)
	s := NewService(ch)
	defer s.CancelAll()

	id := s.Every(0)
	s.mu.Lock()
	interval := s.timers[id].interval
	s.mu.Unlock()
	assert.Equal(t, MinInterval, interval)
}

func TestNegativeAfterFiresImmediately(t *testing.T) {
	ch := make(chan Event, 1)
	s := NewService(ch)

	id := s.After(-time.Second)
	assert.Equal(t, id, waitEvent(t, ch).ID)
}

func TestBusySessionFoldsTicks(t *testing.T) {
	ch := make(chan Event, 1)
	s := NewService(ch)
	defer s.CancelAll()

	id := s.Every(MinInterval)
	time.Sleep(10 * MinInterval)

	require.Equal(t, id, waitEvent(t, ch).ID)

	next := waitEvent(t, ch)
	assert.Equal(t, id, next.ID)
	assert.Positive(t, next.Missed)
	assert.Positive(t, s.Missed())
}

func TestBusySessionRetriesOneShot(t *testing.T) {
	ch := make(chan Event, 1)
	ch <- Event{ID: -1}
	s := NewService(ch)

	id := s.After(time.Millisecond)
	time.Sleep(5 * retryDelay)
	assert.Equal(t, 1, s.Active(), "undelivered one-shot stays pending")
	assert.Positive(t, s.Missed())

	assert.Equal(t, -1, (<-ch).ID)
	ev := waitEvent(t, ch)
	assert.Equal(t, id, ev.ID)
	assert.False(t, ev.Repeating)
	assert.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, time.Millisecond)
}

func TestCancelStopsRetry(t *testing.T) {
	ch := make(chan Event, 1)
	ch <- Event{ID: -1}
	s := NewService(ch)

	id := s.After(time.Millisecond)
	time.Sleep(3 * retryDelay)
	s.Cancel(id)
	<-ch

	select {
	case ev := <-ch:
		t.Fatalf("cancelled timer delivered: %+v", ev)
	case <-time.After(5 * retryDelay):
	}
}
