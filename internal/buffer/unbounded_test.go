package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePreservesOrder(t *testing.T) {
	in, out := Unbounded[int]("test", 4, 1000)

	for i := 0; i < 500; i++ {
		in <- i
	}
	close(in)

	var got []int
	for v := range out {
		got = append(got, v)
	}
	require.Len(t, got, 500)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueueDropsOldestAtLimit(t *testing.T) {
	q := NewQueue[int]("test", 4, 5)

	// Nobody reads Out(); the queue fills the internal slice plus the small
	// output channel buffer, then starts dropping.
	for i := 0; i < 100; i++ {
		q.In() <- i
	}
	close(q.In())

	var got []int
	for v := range q.Out() {
		got = append(got, v)
	}

	assert.Equal(t, 99, got[len(got)-1], "newest item survives")
	assert.Less(t, len(got), 100)
	assert.Equal(t, uint64(100-len(got)), q.Dropped())
}

func TestQueueNeverBlocksProducer(t *testing.T) {
	q := NewQueue[string]("test", 1, 100000)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			q.In() <- "line"
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked with no consumer")
	}
	assert.Eventually(t, func() bool { return q.Len() > 0 }, time.Second, 10*time.Millisecond)
}
