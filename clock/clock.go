package clock

import (
	"sync"
	"time"
)

type (
	// Clock is the time source injected into every handler and the
	// scheduler. NowMillis returns server-side monotonic milliseconds since
	// epoch. NewTicker must behave like time.NewTicker, so the scheduler's
	// once-per-minute loop can be driven by a fake in tests.
	Clock interface {
		NowMillis() int64
		NewTicker(d time.Duration) Ticker
	}

	// Ticker abstracts time.Ticker, so fakes need not allocate a real OS
	// timer.
	Ticker interface {
		C() <-chan time.Time
		Stop()
	}

	systemClock struct{}

	systemTicker struct {
		t *time.Ticker
	}
)

// System is the production Clock, backed by the real wall clock.
var System Clock = systemClock{}

func (systemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

func (x systemTicker) C() <-chan time.Time { return x.t.C }
func (x systemTicker) Stop()               { x.t.Stop() }

// Fake is a manually-advanced Clock for tests. The zero value is usable,
// starting at millisecond 0.
type Fake struct {
	mu      sync.Mutex
	now     int64
	tickers []*fakeTicker
}

// NewFake returns a Fake starting at startMillis.
func NewFake(startMillis int64) *Fake {
	return &Fake{now: startMillis}
}

func (f *Fake) NowMillis() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d, firing (non-blocking, buffered)
// any ticker whose period has elapsed. It does not attempt to reproduce
// time.Ticker's coalescing semantics exactly, only that a tick becomes
// available after enough Advance calls accumulate a full period.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d.Milliseconds()
	for _, t := range f.tickers {
		t.elapsed += d
		for t.elapsed >= t.period {
			t.elapsed -= t.period
			select {
			case t.ch <- time.UnixMilli(f.now):
			default:
			}
		}
	}
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{period: d, ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

type fakeTicker struct {
	period  time.Duration
	elapsed time.Duration
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped = true }
