package tzrecovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFragments_RepeatLimit(t *testing.T) {
	got, err := BuildFragments(FragmentConfig{Alphabet: "ab", MinLen: 1, MaxLen: 2, RepeatLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "ab", "ba"}, got)
}

func TestBuildFragments_RunHeuristic(t *testing.T) {
	// "aa" passes a repeat limit of 2 but is a single run over two characters.
	got, err := BuildFragments(FragmentConfig{Alphabet: "ab", MinLen: 2, MaxLen: 2, RepeatLimit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "ba"}, got)

	assert.True(t, acceptFragment([]rune("aab"), 2))
	assert.False(t, acceptFragment([]rune("aabb"), 2))
	assert.False(t, acceptFragment([]rune("aaab"), 2))
	assert.True(t, acceptFragment([]rune("abc"), 1))
}

func TestBuildFragments_MaxLenClampedToAlphabet(t *testing.T) {
	got, err := BuildFragments(FragmentConfig{Alphabet: "abb", MinLen: 1, MaxLen: 10, RepeatLimit: 5})
	require.NoError(t, err)
	for _, f := range got {
		assert.LessOrEqual(t, len(f), 2, f)
	}
}

func TestBuildFragments_Capitalization(t *testing.T) {
	base := FragmentConfig{Alphabet: "ab", MinLen: 2, MaxLen: 2, RepeatLimit: 1}

	tests := []struct {
		name string
		caps Capitalization
		want []string
	}{
		{"first", Capitalization{First: true}, []string{"ab", "Ab", "ba", "Ba"}},
		{"each", Capitalization{Each: true}, []string{"ab", "aB", "ba", "bA"}},
		{"first ignored with each", Capitalization{First: true, Each: true}, []string{"ab", "aB", "ba", "bA"}},
		{"all", Capitalization{All: true}, []string{"ab", "AB", "ba", "BA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Capitalize = tt.caps
			got, err := BuildFragments(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildFragments_EachVariantCount(t *testing.T) {
	got, err := BuildFragments(FragmentConfig{
		Alphabet:    "abcd",
		MinLen:      4,
		MaxLen:      4,
		RepeatLimit: 1,
		Capitalize:  Capitalization{Each: true},
	})
	require.NoError(t, err)
	// 4^4 words; repeat limit 1 keeps the 4*3*3*3 without adjacent repeats, each with 3 variants.
	assert.Len(t, got, 108*4)
	assert.Equal(t, []string{"abab", "aBab", "abAb", "abaB"}, got[:4])
}

func TestBuildFragments_InvalidConfig(t *testing.T) {
	for name, cfg := range map[string]FragmentConfig{
		"max len":      {Alphabet: "ab", MinLen: 0, MaxLen: 0, RepeatLimit: 1},
		"repeat limit": {Alphabet: "ab", MinLen: 1, MaxLen: 2, RepeatLimit: 0},
		"min over max": {Alphabet: "ab", MinLen: 3, MaxLen: 2, RepeatLimit: 1},
		"alphabet":     {MinLen: 1, MaxLen: 2, RepeatLimit: 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildFragments(cfg)
			assert.ErrorIs(t, err, ErrInvalidFragmentConfig)
		})
	}
}

func TestMixSalts(t *testing.T) {
	got, err := MixSalts(SaltConfig{Chars: "ab", Arity: 2, IncludeEmpty: true, AllowRepeat: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "b", "aa", "ab", "ba", "bb"}, got)

	got, err = MixSalts(SaltConfig{Chars: "ab", Arity: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "ab", "ba"}, got)
}

func TestMixSalts_ArityBounded(t *testing.T) {
	got, err := MixSalts(SaltConfig{Chars: "abcde", Arity: 9})
	require.NoError(t, err)
	// 5 + 5*4 + 5*4*3 + 5*4*3*2 salts of length 1..4 without repeats.
	assert.Len(t, got, 205)
	for _, s := range got {
		assert.LessOrEqual(t, len(s), MaxSaltArity)
	}
}

func TestMixSalts_Edges(t *testing.T) {
	got, err := MixSalts(SaltConfig{Arity: 0, IncludeEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, got)

	_, err = MixSalts(SaltConfig{Arity: 2})
	assert.ErrorIs(t, err, ErrInvalidSaltConfig)
}
