package tzrecovery

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Validate(t *testing.T) {
	good := testParams(t, "pw")
	scheme, err := good.Validate()
	require.NoError(t, err)
	assert.Equal(t, SchemeTz1, scheme)

	badTarget := good
	badTarget.Target = "tz1notanaddress"
	noMnemonic := good
	noMnemonic.Mnemonic = "   "
	negative := good
	negative.Iterations = -1

	for name, p := range map[string]Params{
		"target":     badTarget,
		"mnemonic":   noMnemonic,
		"iterations": negative,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSession(p, nil)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestSession_Transitions(t *testing.T) {
	s, err := NewSession(testParams(t, "pw"), nil)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())

	assert.ErrorIs(t, s.Pause(), ErrBadTransition)
	assert.ErrorIs(t, s.Resume(), ErrBadTransition)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrBadTransition)
	require.NoError(t, s.Pause())
	assert.Equal(t, StatePaused, s.State())
	assert.ErrorIs(t, s.Pause(), ErrBadTransition)
	require.NoError(t, s.Resume())
	assert.Equal(t, StateRunning, s.State())

	done := s.Done()
	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, "stopped", s.State().String())
	select {
	case <-done:
	default:
		t.Fatal("done channel still open after Stop")
	}
	s.Stop()
	assert.ErrorIs(t, s.Resume(), ErrBadTransition)

	// A finished session can be started again with fresh counters.
	require.NoError(t, s.Start())
	assert.Equal(t, StateRunning, s.State())
	assert.Zero(t, s.Stats().TotalAttempts)
}

func TestSession_PauseHoldsWorkers(t *testing.T) {
	s, err := NewSession(testParams(t, "pw"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Pause())

	released := make(chan bool, 1)
	go func() { released <- s.waitRunnable() }()

	select {
	case <-released:
		t.Fatal("worker ran while paused")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Resume())
	select {
	case ok := <-released:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("worker not released by Resume")
	}

	require.NoError(t, s.Pause())
	go func() { released <- s.waitRunnable() }()
	s.Stop()
	select {
	case ok := <-released:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("worker not released by Stop")
	}
}

func TestSession_MatchRecordedOnce(t *testing.T) {
	sink := &MemorySink{}
	s, err := NewSession(testParams(t, "hunter2"), sink)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	a, err := s.Check("hunter1")
	require.NoError(t, err)
	assert.False(t, a.Matched)
	assert.False(t, s.Found())

	a, err = s.Check("hunter2")
	require.NoError(t, err)
	assert.True(t, a.Matched)
	assert.Zero(t, a.Distance)
	assert.Equal(t, s.Params().Target, a.DerivedAddress)
	assert.True(t, s.Found())
	assert.Equal(t, StateFound, s.State())

	_, err = s.Check("hunter2")
	require.NoError(t, err)
	assert.Equal(t, []string{"hunter2"}, sink.Lines())
	assert.Equal(t, []string{"hunter2"}, s.Matches())

	st := s.Stats()
	assert.True(t, st.Found)
	assert.Equal(t, uint64(3), st.TotalAttempts)
	assert.Equal(t, "hunter2", st.BestPassword)
}

func TestSession_BestDistanceNonIncreasing(t *testing.T) {
	s, err := NewSession(testParams(t, "target"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	best := math.Inf(1)
	for _, pw := range []string{"a", "bb", "ccc", "dddd", "e", "ff", "ggg", "hhhh"} {
		a, err := s.Check(pw)
		require.NoError(t, err)
		assert.LessOrEqual(t, a.BestDistance, best)
		assert.Equal(t, a.Distance < best, a.IsImprovement, pw)
		best = a.BestDistance
	}
	st := s.Stats()
	assert.Equal(t, best, st.BestDistance)
	assert.NotEmpty(t, st.BestPassword)
}

func TestSession_InvalidCandidate(t *testing.T) {
	s, err := NewSession(testParams(t, "pw"), nil)
	require.NoError(t, err)

	a, err := s.Check("\xff")
	require.NoError(t, err)
	assert.False(t, a.Matched)
	assert.True(t, math.IsInf(a.Distance, 1))
	assert.Equal(t, uint64(1), s.Stats().TotalAttempts)
}

func TestSession_SinkRetry(t *testing.T) {
	sink := &countingSink{failures: 1}
	s, err := NewSession(testParams(t, "pw"), sink)
	require.NoError(t, err)

	_, err = s.Check("pw")
	require.NoError(t, err)
	calls, lines := sink.snapshot()
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"pw"}, lines)
}

func TestSession_SinkFailure(t *testing.T) {
	sink := &countingSink{failures: 100}
	s, err := NewSession(testParams(t, "pw"), sink)
	require.NoError(t, err)

	a, err := s.Check("pw")
	assert.ErrorIs(t, err, ErrResultNotPersisted)
	assert.True(t, a.Matched)
	assert.True(t, s.Found())
	assert.Equal(t, []string{"pw"}, s.Matches())
	calls, _ := sink.snapshot()
	assert.Equal(t, 2, calls)
}

func TestSession_ConcurrentChecks(t *testing.T) {
	s, err := NewSession(testParams(t, "pw"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := s.Check(string(rune('a'+w)) + string(rune('a'+i)))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, uint64(80), s.Stats().TotalAttempts)
}

func TestSession_Stats(t *testing.T) {
	s, err := NewSession(testParams(t, "pw"), nil)
	require.NoError(t, err)

	now := time.Unix(5000, 0)
	s.clock = func() time.Time { return now }
	require.NoError(t, s.Start())
	for i := 0; i < 4; i++ {
		_, err := s.Check("x")
		require.NoError(t, err)
	}
	now = now.Add(2 * time.Second)

	st := s.Stats()
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, 2*time.Second, st.Elapsed)
	assert.InDelta(t, 2.0, st.AttemptsPerSecond, 1e-9)
	assert.Equal(t, "x", st.BestPassword)
}
