// Package analysis runs trademark owners through ticker resolution and
// stock attribute enrichment.
package analysis

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/tickermatch/internal/clients/yahoo"
	"github.com/aristath/tickermatch/internal/matching"
	"github.com/aristath/tickermatch/internal/ownerfreq"
)

// AttributeSource supplies stock attributes for a ticker.
type AttributeSource interface {
	Get(ctx context.Context, ticker string) (*yahoo.Quote, error)
}

// Record is the analysis outcome for one owner. Every analyzed owner
// produces exactly one record: Stock is nil when resolution found no
// ticker or the attribute fetch failed, and FetchError carries the
// fetch failure if there was one.
type Record struct {
	Owner          string               `json:"owner"`
	TrademarkCount int                  `json:"trademark_count"`
	Match          matching.MatchResult `json:"match"`
	Stock          *yahoo.Quote         `json:"stock,omitempty"`
	FetchError     string               `json:"fetch_error,omitempty"`
}

// Result is a complete analysis run.
type Result struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// Pipeline resolves owners to tickers and enriches matches with stock
// attributes, bounding provider concurrency.
type Pipeline struct {
	resolver    *matching.Resolver
	source      AttributeSource
	concurrency int
	log         zerolog.Logger
}

// NewPipeline creates a pipeline. concurrency bounds simultaneous
// attribute fetches and must be at least 1.
func NewPipeline(resolver *matching.Resolver, source AttributeSource, concurrency int, log zerolog.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		resolver:    resolver,
		source:      source,
		concurrency: concurrency,
		log:         log.With().Str("component", "analysis").Logger(),
	}
}

// Run analyzes the first limit owners in ranking order. Records keep the
// input order regardless of fetch completion order, and each distinct
// ticker is fetched once per run. A cancelled context aborts the run.
func (p *Pipeline) Run(ctx context.Context, owners []ownerfreq.OwnerCount, limit int) (*Result, error) {
	owners = ownerfreq.Top(owners, limit)

	records := make([]Record, len(owners))
	tickerSlots := make(map[string][]int)
	for i, owner := range owners {
		match := p.resolver.Resolve(owner.Owner)
		records[i] = Record{
			Owner:          owner.Owner,
			TrademarkCount: owner.Count,
			Match:          match,
		}
		if match.Ticker != "" {
			tickerSlots[match.Ticker] = append(tickerSlots[match.Ticker], i)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for ticker, slots := range tickerSlots {
		ticker, slots := ticker, slots
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			quote, err := p.source.Get(gctx, ticker)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch stock attributes")
				for _, i := range slots {
					records[i].FetchError = err.Error()
				}
				return nil
			}

			// Slots are disjoint per ticker, so no locking is needed.
			for _, i := range slots {
				records[i].Stock = quote
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summarize(records)
	p.log.Info().
		Int("owners", len(records)).
		Int("matched", summary.MatchedOwners).
		Int("tickers", len(tickerSlots)).
		Msg("Analysis run complete")

	return &Result{Records: records, Summary: summary}, nil
}
