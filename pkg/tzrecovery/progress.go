package tzrecovery

import (
	"sync/atomic"
	"time"
)

const (
	// DefaultSignalRate is the default number of progress pushes per second.
	DefaultSignalRate = 15

	minSignalRate = 1
	maxSignalRate = 60
)

// Stats is an aggregate snapshot of a session.
type Stats struct {
	State             State
	TotalAttempts     uint64
	AttemptsPerSecond float64
	Elapsed           time.Duration
	BestDistance      float64
	BestPassword      string
	Found             bool
	// Position is the plan index a search has advanced to. Candidates outside
	// the length window are skipped but still count towards it.
	Position uint64
}

// ProgressFunc receives throttled statistics. It is called from worker goroutines.
type ProgressFunc func(Stats)

// ClampSignalRate limits a push rate to 1..60 per second.
func ClampSignalRate(rate int) int {
	if rate < minSignalRate {
		return minSignalRate
	}
	if rate > maxSignalRate {
		return maxSignalRate
	}
	return rate
}

// Reporter pushes statistics at most once per 1/signalRate seconds, however
// often it is poked. Pokes that lose the race return immediately.
type Reporter struct {
	fn       ProgressFunc
	interval int64
	last     atomic.Int64
	clock    func() time.Time
}

// NewReporter creates a reporter; a nil fn makes every call a no-op.
func NewReporter(signalRate int, fn ProgressFunc) *Reporter {
	return &Reporter{
		fn:       fn,
		interval: int64(time.Second) / int64(ClampSignalRate(signalRate)),
		clock:    time.Now,
	}
}

// Interval returns the minimum spacing between pushes.
func (r *Reporter) Interval() time.Duration { return time.Duration(r.interval) }

// Maybe pushes snapshot() when the interval has elapsed since the last push.
// The snapshot is only taken when a push happens.
func (r *Reporter) Maybe(snapshot func() Stats) bool {
	if r.fn == nil {
		return false
	}
	now := r.clock().UnixNano()
	last := r.last.Load()
	if last != 0 && now-last < r.interval {
		return false
	}
	if !r.last.CompareAndSwap(last, now) {
		return false
	}
	r.fn(snapshot())
	return true
}

// Flush pushes stats unconditionally, e.g. once a search ends.
func (r *Reporter) Flush(stats Stats) {
	if r.fn == nil {
		return
	}
	r.last.Store(r.clock().UnixNano())
	r.fn(stats)
}
