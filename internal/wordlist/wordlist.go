// Package wordlist reads candidate fragments for component slots from files.
package wordlist

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Parser defines the interface for reading fragments from various sources.
type Parser interface {
	// ParseFragments reads the fragments listed in source, in file order,
	// without duplicates.
	ParseFragments(source string) ([]string, error)
}

// TextParser reads one fragment per line. Blank lines are skipped; a line
// is otherwise taken verbatim apart from its line ending.
type TextParser struct{}

// ParseFragments parses a plain text word list.
func (p *TextParser) ParseFragments(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var fragments []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fragments = append(fragments, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return unique(fragments), nil
}

// CSVParser reads fragments from one column of a CSV file with a header row.
type CSVParser struct {
	Column string // Column name holding the fragment (default: "fragment")
}

// ParseFragments parses a CSV word list.
func (p *CSVParser) ParseFragments(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	column := p.Column
	if column == "" {
		column = "fragment"
	}
	idx := -1
	for i, col := range header {
		if strings.TrimSpace(col) == column {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("missing required column: %s", column)
	}

	var fragments []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if idx >= len(record) {
			return nil, fmt.Errorf("%s column index out of range", column)
		}
		if record[idx] != "" {
			fragments = append(fragments, record[idx])
		}
	}
	return unique(fragments), nil
}

// JSONParser reads fragments from a JSON array.
//
// Expected format, either:
//
//	["alpha", "beta"]
//
// or
//
//	[{"fragment": "alpha"}, {"fragment": 1984}]
type JSONParser struct {
	Field string // Field name for object entries (default: "fragment")
}

// ParseFragments parses a JSON word list.
func (p *JSONParser) ParseFragments(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // keep numeric fragments such as years exactly as written

	var items []interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	field := p.Field
	if field == "" {
		field = "fragment"
	}

	fragments := make([]string, 0, len(items))
	for i, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			val, ok := obj[field]
			if !ok {
				return nil, fmt.Errorf("entry %d: missing %s field", i, field)
			}
			item = val
		}
		s, err := fragmentString(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if s != "" {
			fragments = append(fragments, s)
		}
	}
	return unique(fragments), nil
}

func fragmentString(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported type: %T", val)
	}
}

// ForPath picks a parser by file extension: .csv, .json, anything else is text.
func ForPath(path string) Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVParser{}
	case ".json":
		return &JSONParser{}
	default:
		return &TextParser{}
	}
}

// Load reads the fragments of path with the parser ForPath selects.
func Load(path string) ([]string, error) {
	return ForPath(path).ParseFragments(path)
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
