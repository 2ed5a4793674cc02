package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestTickerDeliversTicks(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	ticker := NewTicker(fixedClock{now: now}, 5*time.Millisecond)

	id, ch := ticker.Subscribe()
	defer ticker.Unsubscribe(id)

	select {
	case got := <-ch:
		assert.Equal(t, now, got)
	case <-time.After(time.Second):
		t.Fatal("no tick delivered")
	}
}

func TestTickerStopsWhenLastSubscriberLeaves(t *testing.T) {
	ticker := NewTicker(SystemClock{}, time.Millisecond)

	id1, _ := ticker.Subscribe()
	id2, ch2 := ticker.Subscribe()

	ticker.Unsubscribe(id1)

	// Remaining subscriber still receives ticks
	select {
	case <-ch2:
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber starved")
	}

	ticker.Unsubscribe(id2)

	ticker.mu.Lock()
	stopped := ticker.stop == nil
	subs := len(ticker.subs)
	ticker.mu.Unlock()
	assert.True(t, stopped)
	assert.Zero(t, subs)
}

func TestTickerUnsubscribeUnknownIDIsNoop(t *testing.T) {
	ticker := NewTicker(SystemClock{}, time.Millisecond)
	ticker.Unsubscribe(99)

	id, ch := ticker.Subscribe()
	defer ticker.Unsubscribe(id)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("ticker did not restart cleanly")
	}
}

func TestTickerSlowSubscriberDoesNotBlock(t *testing.T) {
	ticker := NewTicker(SystemClock{}, time.Millisecond)

	// Never read from this one
	idSlow, _ := ticker.Subscribe()
	defer ticker.Unsubscribe(idSlow)

	id, ch := ticker.Subscribe()
	defer ticker.Unsubscribe(id)

	for i := 0; i < 3; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("tick delivery stalled behind a slow subscriber")
		}
	}
}
