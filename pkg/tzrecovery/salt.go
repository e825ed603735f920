package tzrecovery

import (
	"errors"
	"fmt"
)

// MaxSaltArity bounds the length of a generated salt.
const MaxSaltArity = 4

// ErrInvalidSaltConfig is returned by MixSalts for unusable parameters.
var ErrInvalidSaltConfig = errors.New("invalid salt config")

// SaltConfig configures MixSalts.
type SaltConfig struct {
	// Chars is the salt alphabet, used as given (repeated characters are not merged).
	Chars string

	// Arity is the longest salt generated, bounded to MaxSaltArity.
	Arity int

	// IncludeEmpty prepends the empty salt.
	IncludeEmpty bool

	// AllowRepeat keeps salts that use one character more than once.
	AllowRepeat bool
}

// MixSalts returns the salts of length 1..min(MaxSaltArity, Arity) drawn from
// Chars in product order, shortest first.
func MixSalts(cfg SaltConfig) ([]string, error) {
	arity := cfg.Arity
	if arity > MaxSaltArity {
		arity = MaxSaltArity
	}
	chars := []rune(cfg.Chars)
	if arity > 0 && len(chars) == 0 {
		return nil, fmt.Errorf("%w: arity %d with empty character set", ErrInvalidSaltConfig, cfg.Arity)
	}

	var salts []string
	if cfg.IncludeEmpty {
		salts = append(salts, "")
	}

	salt := make([]rune, arity)
	for length := 1; length <= arity; length++ {
		idx := make([]int, length)
		for {
			for i, j := range idx {
				salt[i] = chars[j]
			}
			if cfg.AllowRepeat || distinctRunes(salt[:length]) {
				salts = append(salts, string(salt[:length]))
			}
			if !nextTuple(idx, len(chars)) {
				break
			}
		}
	}
	return salts, nil
}

func distinctRunes(rs []rune) bool {
	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			if rs[i] == rs[j] {
				return false
			}
		}
	}
	return true
}
