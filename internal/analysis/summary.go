package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates one analysis run. MatchedOwners counts owners whose
// ticker resolved and whose attribute fetch succeeded. Market cap
// statistics cover only records whose fetched attributes include a market
// cap; absent values are excluded rather than treated as zero.
type Summary struct {
	TotalOwners        int     `json:"total_owners"`
	MatchedOwners      int     `json:"matched_owners"`
	TotalTrademarks    int     `json:"total_trademarks"`
	AggregateMarketCap int64   `json:"aggregate_market_cap"`
	ModalSector        string  `json:"modal_sector,omitempty"`
	MeanTrademarks     float64 `json:"mean_trademarks"`
	MedianTrademarks   float64 `json:"median_trademarks"`
	MeanMarketCap      float64 `json:"mean_market_cap"`
	MedianMarketCap    float64 `json:"median_market_cap"`
}

// Summarize folds a record slice into summary aggregates. Deterministic:
// the modal sector breaks ties by first appearance in record order.
func Summarize(records []Record) Summary {
	summary := Summary{TotalOwners: len(records)}

	trademarkCounts := make([]float64, 0, len(records))
	var marketCaps []float64
	sectorCounts := make(map[string]int)
	sectorOrder := make(map[string]int)

	for _, record := range records {
		summary.TotalTrademarks += record.TrademarkCount
		trademarkCounts = append(trademarkCounts, float64(record.TrademarkCount))

		if record.Stock == nil {
			continue
		}
		if record.Match.Ticker != "" {
			summary.MatchedOwners++
		}
		if record.Stock.MarketCap != nil {
			summary.AggregateMarketCap += *record.Stock.MarketCap
			marketCaps = append(marketCaps, float64(*record.Stock.MarketCap))
		}
		if record.Stock.Sector != nil {
			sector := *record.Stock.Sector
			if _, seen := sectorCounts[sector]; !seen {
				sectorOrder[sector] = len(sectorOrder)
			}
			sectorCounts[sector]++
		}
	}

	for sector, count := range sectorCounts {
		current := summary.ModalSector
		switch {
		case current == "":
			summary.ModalSector = sector
		case count > sectorCounts[current]:
			summary.ModalSector = sector
		case count == sectorCounts[current] && sectorOrder[sector] < sectorOrder[current]:
			summary.ModalSector = sector
		}
	}

	if len(trademarkCounts) > 0 {
		summary.MeanTrademarks = stat.Mean(trademarkCounts, nil)
		summary.MedianTrademarks = median(trademarkCounts)
	}
	if len(marketCaps) > 0 {
		summary.MeanMarketCap = stat.Mean(marketCaps, nil)
		summary.MedianMarketCap = median(marketCaps)
	}

	return summary
}

// median returns the conventional midpoint median: the middle value, or
// the average of the two middle values for even-length input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
