package tzrecovery

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidFragmentConfig is returned by BuildFragments for unusable parameters.
var ErrInvalidFragmentConfig = errors.New("invalid fragment config")

// Capitalization selects the extra case variants emitted per accepted fragment.
type Capitalization struct {
	First bool // title-cased copy (ignored when Each is set)
	Each  bool // one copy per internal position with only that character upper-cased
	All   bool // fully upper-cased copy
}

// FragmentConfig configures BuildFragments.
type FragmentConfig struct {
	// Alphabet is the character set; duplicates are ignored, order is kept.
	Alphabet string

	// MinLen is the shortest fragment kept.
	MinLen int

	// MaxLen is the longest fragment generated. Clamped to the alphabet size.
	MaxLen int

	// RepeatLimit is the longest allowed run of one repeated character (> 0).
	RepeatLimit int

	Capitalize Capitalization
}

// Validate reports whether the config can be used for generation.
func (c FragmentConfig) Validate() error {
	if c.MaxLen < 1 {
		return fmt.Errorf("%w: max length %d < 1", ErrInvalidFragmentConfig, c.MaxLen)
	}
	if c.RepeatLimit <= 0 {
		return fmt.Errorf("%w: repeat limit %d <= 0", ErrInvalidFragmentConfig, c.RepeatLimit)
	}
	if c.MinLen > c.MaxLen {
		return fmt.Errorf("%w: min length %d > max length %d", ErrInvalidFragmentConfig, c.MinLen, c.MaxLen)
	}
	if c.Alphabet == "" {
		return fmt.Errorf("%w: empty alphabet", ErrInvalidFragmentConfig)
	}
	return nil
}

// BuildFragments enumerates every string of length 1..MaxLen over the alphabet,
// in product order, and keeps those that look like plausible word pieces:
//
//   - length >= MinLen
//   - no run of one repeated character longer than RepeatLimit
//   - more runs than half the length ("aabb" has 2 runs in 4 characters and is dropped)
//
// Case variants requested by Capitalize follow each accepted fragment.
func BuildFragments(cfg FragmentConfig) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	alphabet := uniqueRunes(cfg.Alphabet)
	maxLen := cfg.MaxLen
	if maxLen > len(alphabet) {
		maxLen = len(alphabet)
	}

	var fragments []string
	word := make([]rune, maxLen)
	for length := 1; length <= maxLen; length++ {
		idx := make([]int, length)
		for {
			for i, j := range idx {
				word[i] = alphabet[j]
			}
			if length >= cfg.MinLen && acceptFragment(word[:length], cfg.RepeatLimit) {
				fragments = appendCaseVariants(fragments, word[:length], cfg.Capitalize)
			}
			if !nextTuple(idx, len(alphabet)) {
				break
			}
		}
	}
	return fragments, nil
}

// acceptFragment applies the run-length rules of BuildFragments.
func acceptFragment(word []rune, repeatLimit int) bool {
	runs := 0
	for i := 0; i < len(word); {
		j := i + 1
		for j < len(word) && word[j] == word[i] {
			j++
		}
		if j-i > repeatLimit {
			return false
		}
		runs++
		i = j
	}
	return 2*runs > len(word)
}

func appendCaseVariants(out []string, word []rune, c Capitalization) []string {
	base := string(word)
	out = append(out, base)

	if c.First && !c.Each {
		out = append(out, titleCase(word))
	}
	if c.Each {
		variant := make([]rune, len(word))
		for n := 1; n < len(word); n++ {
			copy(variant, word)
			variant[n] = unicode.ToUpper(variant[n])
			out = append(out, string(variant))
		}
	}
	if c.All {
		out = append(out, strings.ToUpper(base))
	}
	return out
}

// titleCase upper-cases letters that start a word and lower-cases the rest.
func titleCase(word []rune) string {
	out := make([]rune, len(word))
	prevLetter := false
	for i, r := range word {
		if prevLetter {
			out[i] = unicode.ToLower(r)
		} else {
			out[i] = unicode.ToTitle(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return string(out)
}

func uniqueRunes(s string) []rune {
	seen := make(map[rune]struct{}, len(s))
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
