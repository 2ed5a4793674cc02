package followup

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Injected so the schedule math and the
// overdue scans stay testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Ticker fans a periodic tick out to subscribers. The underlying timer only
// runs while at least one subscriber is attached, so an idle dashboard leaks
// no timers. Each countdown view subscribes when it opens and unsubscribes
// when it closes.
type Ticker struct {
	clock    Clock
	interval time.Duration

	mu     sync.Mutex
	subs   map[int]chan time.Time
	nextID int
	stop   chan struct{}
}

func NewTicker(clock Clock, interval time.Duration) *Ticker {
	return &Ticker{
		clock:    clock,
		interval: interval,
		subs:     make(map[int]chan time.Time),
	}
}

// Subscribe registers a tick channel and returns its id for Unsubscribe.
// The first subscriber starts the timer loop.
func (t *Ticker) Subscribe() (int, <-chan time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan time.Time, 1)
	t.subs[id] = ch

	if t.stop == nil {
		t.stop = make(chan struct{})
		go t.run(t.stop)
	}
	return id, ch
}

// Subscribers reports how many tick channels are currently attached
func (t *Ticker) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Unsubscribe detaches a subscriber. The last one out stops the timer loop.
func (t *Ticker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subs[id]; !ok {
		return
	}
	delete(t.subs, id)

	if len(t.subs) == 0 && t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Ticker) run(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.broadcast(t.clock.Now())
		}
	}
}

func (t *Ticker) broadcast(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		// Drop the tick if the subscriber is behind; the next one carries
		// a fresher instant anyway
		select {
		case ch <- now:
		default:
		}
	}
}
