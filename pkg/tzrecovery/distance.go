package tzrecovery

import (
	"math"
	"strings"
)

// Base58Alphabet is the Bitcoin Base58 symbol order used to measure character distance.
const Base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	base58Size    = float64(len(Base58Alphabet))
	minPosWeight  = 0.5
	maxPosWeight  = 1.0
	outOfAlphabet = 1.0
)

// CharDistance returns the circular distance between two Base58 symbols,
// normalised by the alphabet size. Symbols outside the alphabet score 1.
func CharDistance(a, b byte) float64 {
	p1 := strings.IndexByte(Base58Alphabet, a)
	p2 := strings.IndexByte(Base58Alphabet, b)
	if p1 < 0 || p2 < 0 {
		return outOfAlphabet
	}
	direct := math.Abs(float64(p1 - p2))
	return math.Min(direct, base58Size-direct) / base58Size
}

// MatchLength returns how many characters after the scheme prefix derived
// shares with target before the first difference.
func MatchLength(derived, target string) int {
	n := 0
	for i := addressPrefixLen; i < len(derived) && i < len(target); i++ {
		if derived[i] != target[i] {
			break
		}
		n++
	}
	return n
}

// Score compares a derived address with the target.
//
// Identical strings match with distance 0. Otherwise the shared run after the
// prefix is frozen and every remaining position contributes its CharDistance,
// weighted linearly from 1.0 at the first mismatch down to 0.5 at the last
// character. Addresses that differ in prefix or length score +Inf.
func Score(derived, target string) (matched bool, distance float64) {
	if derived == target {
		return true, 0
	}
	if len(target) <= addressPrefixLen || len(derived) != len(target) ||
		derived[:addressPrefixLen] != target[:addressPrefixLen] {
		return false, math.Inf(1)
	}

	start := addressPrefixLen + MatchLength(derived, target)
	n := len(target) - start
	for k := 0; k < n; k++ {
		weight := maxPosWeight
		if n > 1 {
			weight -= (maxPosWeight - minPosWeight) * float64(k) / float64(n-1)
		}
		i := start + k
		distance += CharDistance(derived[i], target[i]) * weight
	}
	return false, distance
}
