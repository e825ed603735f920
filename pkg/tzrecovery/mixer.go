package tzrecovery

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// ErrInvalidLengthBounds is returned when a candidate length window is empty or negative.
var ErrInvalidLengthBounds = errors.New("invalid candidate length bounds")

// MixResult is the output of MixCandidates.
type MixResult struct {
	Candidates []string
	Considered uint64 // tuples produced by the Cartesian product
	Kept       uint64 // tuples whose concatenation passed the length filter
}

// MixCandidates concatenates every tuple of the Cartesian product of lists, in
// order, and keeps the candidates whose length (in characters) lies within
// [minLen, maxLen]. An empty list takes part as the single empty string.
func MixCandidates(lists [][]string, minLen, maxLen int) (MixResult, error) {
	if err := checkLengthBounds(minLen, maxLen); err != nil {
		return MixResult{}, err
	}

	lists = normalizeLists(lists)
	var res MixResult
	idx := make([]int, len(lists))
	var sb strings.Builder
	for {
		sb.Reset()
		for i, j := range idx {
			sb.WriteString(lists[i][j])
		}
		res.Considered++
		if candidate := sb.String(); inLengthBounds(candidate, minLen, maxLen) {
			res.Candidates = append(res.Candidates, candidate)
			res.Kept++
		}
		if !nextMixedTuple(idx, lists) {
			break
		}
	}
	return res, nil
}

// CountSpace returns the size of a search space without enumerating it: the
// product of the list lengths (an empty list counts as 1) times variableSlots!.
func CountSpace(lists [][]string, variableSlots int) *big.Int {
	total := big.NewInt(1)
	for _, l := range lists {
		if n := len(l); n > 0 {
			total.Mul(total, big.NewInt(int64(n)))
		}
	}
	return total.Mul(total, factorial(variableSlots))
}

func factorial(n int) *big.Int {
	f := big.NewInt(1)
	for i := 2; i <= n; i++ {
		f.Mul(f, big.NewInt(int64(i)))
	}
	return f
}

func checkLengthBounds(minLen, maxLen int) error {
	if minLen < 0 {
		return fmt.Errorf("%w: min length %d < 0", ErrInvalidLengthBounds, minLen)
	}
	if maxLen < minLen {
		return fmt.Errorf("%w: max length %d < min length %d", ErrInvalidLengthBounds, maxLen, minLen)
	}
	return nil
}

func inLengthBounds(candidate string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(candidate)
	return n >= minLen && n <= maxLen
}

var emptyList = []string{""}

func normalizeLists(lists [][]string) [][]string {
	out := make([][]string, len(lists))
	for i, l := range lists {
		if len(l) == 0 {
			l = emptyList
		}
		out[i] = l
	}
	return out
}

// nextTuple advances idx as an odometer over [0, base) with the last position
// moving fastest. It reports false after the last tuple.
func nextTuple(idx []int, base int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < base {
			return true
		}
		idx[i] = 0
	}
	return false
}

// nextMixedTuple is nextTuple with a per-position base taken from lists.
func nextMixedTuple(idx []int, lists [][]string) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(lists[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}
