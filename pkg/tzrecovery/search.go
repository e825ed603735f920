package tzrecovery

import (
	"context"
	"log"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// SearchStrategy walks a plan and checks candidates against a session.
// Implement this interface to plug in another dispatch scheme.
type SearchStrategy interface {
	// Search starts the session and checks candidates until the plan is
	// exhausted, a match is found, the session is stopped or ctx is cancelled.
	// A non-nil result may come with an error when a match could not be recorded.
	Search(ctx context.Context, plan *Plan, session *Session) (*SearchResult, error)

	// Name returns a human-readable name for this strategy.
	Name() string
}

// SearchConfig configures ParallelSearch.
type SearchConfig struct {
	// NumWorkers controls parallelization (0 = all CPUs but one)
	NumWorkers int

	// StartIndex resumes a plan at the given candidate index
	StartIndex uint64

	// QueueSize is the candidate channel buffer per worker
	QueueSize int

	// SignalRate caps Progress calls per second (clamped to 1..60)
	SignalRate int

	// Progress receives throttled statistics; nil disables it
	Progress ProgressFunc

	// LogInterval spaces the periodic progress log lines (0 disables them)
	LogInterval time.Duration
}

// DefaultSearchConfig returns a sensible default configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		NumWorkers:  0, // Auto-detect
		QueueSize:   64,
		SignalRate:  DefaultSignalRate,
		LogInterval: 30 * time.Second,
	}
}

// DefaultWorkers leaves one CPU to the host.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// SearchResult summarises a finished search.
type SearchResult struct {
	Found     bool
	Password  string
	Attempts  uint64
	NextIndex uint64 // every index below this one has been checked
	Stats     Stats
}

// ParallelSearch feeds plan candidates to a pool of workers.
type ParallelSearch struct {
	Config SearchConfig
}

// NewParallelSearch creates a parallel search with default settings.
func NewParallelSearch() *ParallelSearch {
	return &ParallelSearch{Config: DefaultSearchConfig()}
}

// WithConfig sets the search configuration.
func (p *ParallelSearch) WithConfig(config SearchConfig) *ParallelSearch {
	p.Config = config
	return p
}

// Name returns the name of this strategy.
func (p *ParallelSearch) Name() string {
	return "ParallelSearch"
}

type job struct {
	index    uint64
	password string
}

// Search implements the SearchStrategy interface.
func (p *ParallelSearch) Search(ctx context.Context, plan *Plan, session *Session) (*SearchResult, error) {
	if err := session.Start(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := p.Config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	queueSize := p.Config.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	reporter := NewReporter(p.Config.SignalRate, p.Config.Progress)
	done := session.Done()

	log.Printf("Starting passphrase search: %d candidates from index %d, %d templates, %d workers",
		plan.Len(), p.Config.StartIndex, len(plan.templates), numWorkers)

	// Stop the session when the caller cancels, which also wakes paused workers.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Stop()
		case <-watchDone:
		}
	}()

	jobs := make(chan job, numWorkers*queueSize)
	var (
		nextIndex atomic.Uint64
		reached   atomic.Uint64
		resumeMu  sync.Mutex
		resumeAt  = uint64(math.MaxUint64)
	)
	nextIndex.Store(p.Config.StartIndex)
	reached.Store(p.Config.StartIndex)
	snapshot := func() Stats {
		st := session.Stats()
		st.Position = reached.Load()
		return st
	}
	requeue := func(i uint64) {
		resumeMu.Lock()
		if i < resumeAt {
			resumeAt = i
		}
		resumeMu.Unlock()
	}

	// Generate work
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		defer close(jobs)
		exhausted := true
		_ = plan.Each(ctx, p.Config.StartIndex, func(i uint64, pw string) bool {
			if session.Found() || !session.waitRunnable() {
				exhausted = false
				return false
			}
			select {
			case <-ctx.Done():
			case <-done:
			case jobs <- job{index: i, password: pw}:
				nextIndex.Store(i + 1)
				return true
			}
			exhausted = false
			return false
		})
		if exhausted && ctx.Err() == nil {
			nextIndex.Store(plan.Len())
		}
	}()

	// Progress logging goroutine
	progressDone := make(chan struct{})
	if p.Config.LogInterval > 0 {
		go func() {
			ticker := time.NewTicker(p.Config.LogInterval)
			defer ticker.Stop()
			for {
				select {
				case <-progressDone:
					return
				case <-ticker.C:
					st := session.Stats()
					log.Printf("Progress: tested %d candidates (%.1f/s), best distance %.4f (%q)",
						st.TotalAttempts, st.AttemptsPerSecond, st.BestDistance, st.BestPassword)
				}
			}
		}()
	}

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		sinkErr error
	)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-done:
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					if session.Found() || !session.waitRunnable() {
						requeue(j.index)
						return
					}
					attempt, err := session.Check(j.password)
					for pos := reached.Load(); j.index+1 > pos; pos = reached.Load() {
						if reached.CompareAndSwap(pos, j.index+1) {
							break
						}
					}
					if err != nil {
						errOnce.Do(func() { sinkErr = err })
					}
					if attempt.Matched {
						cancel()
						return
					}
					reporter.Maybe(snapshot)
				}
			}
		}()
	}

	wg.Wait()
	session.Stop()
	<-producerDone
	for j := range jobs {
		requeue(j.index)
	}
	close(progressDone)
	close(watchDone)

	next := nextIndex.Load()
	if resumeAt < next {
		next = resumeAt
	}

	stats := session.Stats()
	stats.Position = next
	reporter.Flush(stats)
	result := &SearchResult{
		Found:     stats.Found,
		Attempts:  stats.TotalAttempts,
		NextIndex: next,
		Stats:     stats,
	}
	if matches := session.Matches(); len(matches) > 0 {
		result.Password = matches[0]
		log.Printf("✅ Found passphrase after testing %d candidates", stats.TotalAttempts)
	} else {
		log.Printf("Search finished (%s): tested %d candidates, best distance %.4f (%q)",
			stats.State, stats.TotalAttempts, stats.BestDistance, stats.BestPassword)
	}
	return result, sinkErr
}
