// Package ownerfreq ranks trademark owners by filing frequency.
package ownerfreq

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
)

// OwnerCount is one owner with its trademark filing count.
type OwnerCount struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// Load reads a trademark registry CSV and returns owners ranked by
// descending filing count. Ties keep first-seen order, so the ranking is
// deterministic for a given file. Rows with an empty Owner cell are
// skipped.
func Load(path string) ([]OwnerCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry header: %w", err)
	}

	ownerCol := -1
	for i, name := range header {
		if name == "Owner" {
			ownerCol = i
			break
		}
	}
	if ownerCol == -1 {
		return nil, fmt.Errorf("registry file has no Owner column")
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse registry file: %w", err)
		}
		if ownerCol >= len(record) {
			continue
		}
		owner := record[ownerCol]
		if owner == "" {
			continue
		}
		if _, seen := counts[owner]; !seen {
			firstSeen[owner] = len(firstSeen)
		}
		counts[owner]++
	}

	ranked := make([]OwnerCount, 0, len(counts))
	for owner, count := range counts {
		ranked = append(ranked, OwnerCount{Owner: owner, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Owner] < firstSeen[ranked[j].Owner]
	})

	return ranked, nil
}

// Top returns the first limit entries of a ranking. A non-positive or
// oversized limit returns the whole ranking.
func Top(ranked []OwnerCount, limit int) []OwnerCount {
	if limit <= 0 || limit > len(ranked) {
		return ranked
	}
	return ranked[:limit]
}
