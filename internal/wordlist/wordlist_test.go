package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTextParser(t *testing.T) {
	path := writeFile(t, "words.txt", "tezos\r\n\n  \nbaker\ntezos\n # hash\n")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"tezos", "baker", " # hash"}, got)
}

func TestCSVParser(t *testing.T) {
	path := writeFile(t, "words.csv", "id, fragment\n1, tezos\n2, baker\n3,\n4, tezos\n")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"tezos", "baker"}, got)

	p := &CSVParser{Column: "id"}
	got, err = p.ParseFragments(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)

	_, err = (&CSVParser{Column: "word"}).ParseFragments(path)
	assert.Error(t, err)
}

func TestJSONParser(t *testing.T) {
	strs := writeFile(t, "words.json", `["tezos", "baker", "tezos"]`)
	got, err := Load(strs)
	require.NoError(t, err)
	assert.Equal(t, []string{"tezos", "baker"}, got)

	objs := writeFile(t, "objs.json", `[{"word": "tezos"}, {"word": 1984}, {"word": ""}]`)
	got, err = (&JSONParser{Field: "word"}).ParseFragments(objs)
	require.NoError(t, err)
	assert.Equal(t, []string{"tezos", "1984"}, got)

	_, err = (&JSONParser{}).ParseFragments(objs)
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `[true]`)
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &CSVParser{}, ForPath("a/b.CSV"))
	assert.IsType(t, &JSONParser{}, ForPath("list.json"))
	assert.IsType(t, &TextParser{}, ForPath("list.lst"))
	assert.IsType(t, &TextParser{}, ForPath("noext"))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
