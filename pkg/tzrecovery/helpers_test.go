package tzrecovery

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Low round count keeps session and search tests fast; the derivation itself
// is pinned at DefaultIterations in derive_test.go.
const testIterations = 16

// testParams returns params whose target is the address of password.
func testParams(t *testing.T, password string) Params {
	t.Helper()
	target, err := DeriveAddress(password, testEmail, testMnemonic, testIterations)
	require.NoError(t, err)
	return Params{
		Target:     target,
		Email:      testEmail,
		Mnemonic:   testMnemonic,
		Iterations: testIterations,
	}
}

// testPlan has 16 candidates over the templates WXE and XWE:
// index 0 is "hunter2" and index 15 is "42admin!".
func testPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan(PlanConfig{
		Components: [4][]string{{"hunter", "admin"}, {"2", "42"}},
		Extra:      []string{"", "!"},
		MinLen:     0,
		MaxLen:     64,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(16), plan.Len())
	return plan
}

func testSearch(workers int) *ParallelSearch {
	cfg := DefaultSearchConfig()
	cfg.NumWorkers = workers
	cfg.LogInterval = 0
	return NewParallelSearch().WithConfig(cfg)
}

var errSinkUnavailable = errors.New("sink unavailable")

// countingSink fails the first failures appends.
type countingSink struct {
	mu       sync.Mutex
	calls    int
	failures int
	lines    []string
}

func (s *countingSink) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errSinkUnavailable
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *countingSink) snapshot() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, append([]string(nil), s.lines...)
}
