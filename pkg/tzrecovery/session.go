package tzrecovery

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tyler-smith/go-bip39"
)

// State is the lifecycle of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFound   // terminal
	StateStopped // terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFound:
		return "found"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrInvalidParams is returned for unusable session parameters.
	ErrInvalidParams = errors.New("invalid session parameters")

	// ErrResultNotPersisted is returned when a match could not be written to the result sink.
	ErrResultNotPersisted = errors.New("match could not be recorded")

	// ErrBadTransition is returned for state changes the session does not allow.
	ErrBadTransition = errors.New("invalid session state transition")
)

// Params are the fixed inputs of a recovery run.
type Params struct {
	Target     string // address the passphrase produced
	Email      string
	Mnemonic   string // space separated word list
	Iterations int    // PBKDF2 rounds, DefaultIterations when 0
}

// Validate checks the parameters and returns the target's scheme.
// A mnemonic outside the BIP39 English list is accepted but logged.
func (p Params) Validate() (Scheme, error) {
	scheme, _, err := ParseAddress(p.Target)
	if err != nil {
		return "", fmt.Errorf("%w: target: %v", ErrInvalidParams, err)
	}
	if strings.TrimSpace(p.Mnemonic) == "" {
		return "", fmt.Errorf("%w: empty mnemonic", ErrInvalidParams)
	}
	if p.Iterations < 0 {
		return "", fmt.Errorf("%w: negative iteration count %d", ErrInvalidParams, p.Iterations)
	}
	if !bip39.IsMnemonicValid(p.Mnemonic) {
		log.Printf("Mnemonic is not a valid BIP39 phrase, continuing with it as given")
	}
	return scheme, nil
}

// Attempt is the outcome of checking one candidate.
type Attempt struct {
	Password       string
	DerivedAddress string
	Distance       float64
	Matched        bool
	IsImprovement  bool
	BestDistance   float64
	BestPassword   string
	Timestamp      time.Time
}

// Session holds the mutable state of one recovery run. All methods are safe
// for concurrent use; Check is the per-candidate unit of work.
type Session struct {
	params  Params
	deriver Deriver
	sink    ResultSink
	clock   func() time.Time

	found atomic.Bool

	mu            sync.Mutex
	cond          *sync.Cond
	state         State
	done          chan struct{}
	startTime     time.Time
	totalAttempts uint64
	bestDistance  float64
	bestPassword  string
	matches       []string
	persisted     map[string]bool
}

// NewSession validates params and creates an idle session. A nil sink drops matches
// (they stay available through Matches).
func NewSession(params Params, sink ResultSink) (*Session, error) {
	scheme, err := params.Validate()
	if err != nil {
		return nil, err
	}
	s := &Session{
		params:  params,
		deriver: Deriver{Scheme: scheme, Iterations: params.Iterations},
		sink:    sink,
		clock:   time.Now,
	}
	s.cond = sync.NewCond(&s.mu)
	s.reset()
	return s, nil
}

func (s *Session) reset() {
	s.state = StateIdle
	s.done = make(chan struct{})
	s.startTime = time.Time{}
	s.totalAttempts = 0
	s.bestDistance = math.Inf(1)
	s.bestPassword = ""
	s.matches = nil
	s.persisted = make(map[string]bool)
	s.found.Store(false)
}

// Params returns the session parameters.
func (s *Session) Params() Params { return s.params }

// Start resets the counters and moves the session to running.
// A running or paused session cannot be started again.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning || s.state == StatePaused {
		return fmt.Errorf("%w: start from %s", ErrBadTransition, s.state)
	}
	s.reset()
	s.state = StateRunning
	s.startTime = s.clock()
	log.Printf("New session started for target %s", s.params.Target)
	return nil
}

// Pause holds workers before their next candidate.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return fmt.Errorf("%w: pause from %s", ErrBadTransition, s.state)
	}
	s.state = StatePaused
	return nil
}

// Resume releases paused workers.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrBadTransition, s.state)
	}
	s.state = StateRunning
	s.cond.Broadcast()
	return nil
}

// Stop ends a running or paused session. Terminal sessions are left as they are.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning || s.state == StatePaused {
		s.finishLocked(StateStopped)
	}
}

// finishLocked enters a terminal state and wakes everybody waiting on the session.
func (s *Session) finishLocked(st State) {
	s.state = st
	close(s.done)
	s.cond.Broadcast()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Found reports whether a match has been seen. It does not take the lock.
func (s *Session) Found() bool { return s.found.Load() }

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// waitRunnable blocks while the session is paused and reports whether work may continue.
func (s *Session) waitRunnable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.state == StatePaused {
		s.cond.Wait()
	}
	return s.state == StateRunning
}

// Matches returns the matching passwords seen so far, each once.
func (s *Session) Matches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.matches...)
}

// Check derives the address for password, scores it against the target and
// updates the session. Derivation failures score +Inf and are only logged.
// The returned error is non-nil only when a match could not be recorded.
func (s *Session) Check(password string) (Attempt, error) {
	derived, err := s.deriver.Derive(password, s.params.Email, s.params.Mnemonic)
	matched, distance := false, math.Inf(1)
	if err != nil {
		log.Printf("Skipping candidate %q: %v", password, err)
	} else {
		matched, distance = Score(derived, s.params.Target)
	}

	now := s.clock()
	s.mu.Lock()
	s.totalAttempts++
	improved := distance < s.bestDistance
	if improved {
		s.bestDistance = distance
		s.bestPassword = password
	}
	var sinkErr error
	if matched {
		sinkErr = s.recordMatchLocked(password)
	}
	attempt := Attempt{
		Password:       password,
		DerivedAddress: derived,
		Distance:       distance,
		Matched:        matched,
		IsImprovement:  improved,
		BestDistance:   s.bestDistance,
		BestPassword:   s.bestPassword,
		Timestamp:      now,
	}
	s.mu.Unlock()

	if improved && !matched {
		s.logImprovement(attempt)
	}
	return attempt, sinkErr
}

// recordMatchLocked marks the session found and appends password to the sink
// once. A failed append is retried once before giving up.
func (s *Session) recordMatchLocked(password string) error {
	s.found.Store(true)
	if s.state == StateRunning || s.state == StatePaused {
		s.finishLocked(StateFound)
	}

	if _, seen := s.persisted[password]; !seen {
		s.matches = append(s.matches, password)
		s.persisted[password] = false
		log.Printf("✅ Found passphrase %q for %s", password, s.params.Target)
	}
	if s.persisted[password] || s.sink == nil {
		return nil
	}

	err := s.sink.Append(password)
	if err != nil {
		log.Printf("Recording match failed, retrying: %v", err)
		err = s.sink.Append(password)
	}
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrResultNotPersisted, password, err)
	}
	s.persisted[password] = true
	return nil
}

func (s *Session) logImprovement(a Attempt) {
	if a.DerivedAddress == "" {
		return
	}
	target := s.params.Target
	frozen := addressPrefixLen + MatchLength(a.DerivedAddress, target)
	next := ""
	if frozen < len(target) {
		next = target[frozen : frozen+1]
	}
	log.Printf("Improvement: %q distance %.4f, frozen prefix %s, next target %q",
		a.Password, a.Distance, target[:frozen], next)
}

// Stats returns an aggregate snapshot.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		State:         s.state,
		TotalAttempts: s.totalAttempts,
		BestDistance:  s.bestDistance,
		BestPassword:  s.bestPassword,
		Found:         s.found.Load(),
	}
	if !s.startTime.IsZero() {
		st.Elapsed = s.clock().Sub(s.startTime)
		if secs := st.Elapsed.Seconds(); secs > 0 {
			st.AttemptsPerSecond = float64(s.totalAttempts) / secs
		}
	}
	return st
}
