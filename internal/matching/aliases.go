package matching

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
)

//go:embed assets/aliases.csv
var defaultAliasCSV []byte

// AliasTable maps normalized company aliases to tickers. Immutable after
// load; many aliases may point at the same ticker. Keys() returns a sorted
// slice so fuzzy scans are deterministic.
type AliasTable struct {
	byAlias map[string]string
	keys    []string
}

// LoadAliasTable reads an alias CSV (header "alias,ticker") from path, or
// the embedded default table when path is empty. Alias keys are normalized
// at load; on duplicate normalized keys the last row wins.
func LoadAliasTable(path string) (*AliasTable, error) {
	data := defaultAliasCSV
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read alias file: %w", err)
		}
	}
	return parseAliasTable(data)
}

func parseAliasTable(data []byte) (*AliasTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 2

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read alias CSV header: %w", err)
	}
	if header[0] != "alias" || header[1] != "ticker" {
		return nil, fmt.Errorf("unexpected alias CSV header: %v", header)
	}

	byAlias := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse alias CSV: %w", err)
		}
		key := Normalize(record[0])
		if key == "" || record[1] == "" {
			continue
		}
		byAlias[key] = record[1]
	}

	if len(byAlias) == 0 {
		return nil, fmt.Errorf("alias table is empty")
	}

	keys := make([]string, 0, len(byAlias))
	for key := range byAlias {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &AliasTable{byAlias: byAlias, keys: keys}, nil
}

// Lookup returns the ticker for an exact normalized alias key.
func (t *AliasTable) Lookup(key string) (string, bool) {
	ticker, ok := t.byAlias[key]
	return ticker, ok
}

// Keys returns all normalized alias keys in lexicographic order. Callers
// must not modify the returned slice.
func (t *AliasTable) Keys() []string {
	return t.keys
}

// Len returns the number of alias entries.
func (t *AliasTable) Len() int {
	return len(t.byAlias)
}
