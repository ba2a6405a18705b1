package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// SearchAllOpts configures [SearchAll].
type SearchAllOpts struct {
	Workers   int                   // Concurrent searches (default: 5, max: 10)
	RateLimit float64               // Requests per second across all workers (default: 5)
	Progress  chan<- ProgressUpdate // Optional
}

func (o SearchAllOpts) withDefaults() SearchAllOpts {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Workers > maxWorkers {
		o.Workers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// SearchOutcome is the result of one query of [SearchAll]. Exactly one of Result and Err is set.
type SearchOutcome struct {
	Query  string
	Result *services.SearchResult
	Err    error
}

// SearchAll runs a search per query concurrently and returns one outcome per query in input order.
//
// Per-query failures are reported on the outcome. The returned error is only set when ctx
// ends before every query ran; outcomes of queries that never ran carry the context error.
func SearchAll(ctx context.Context, searcher Searcher, queries []string, kind models.ItemKind, limit int, opts SearchAllOpts) ([]SearchOutcome, error) {
	if searcher == nil {
		return nil, fmt.Errorf("%w: searcher not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()

	outcomes := make([]SearchOutcome, len(queries))
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var g errgroup.Group
	g.SetLimit(opts.Workers)

	for i, query := range queries {
		outcomes[i].Query = query
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				outcomes[i].Err = err
				return err
			}

			result, err := searcher.Search(ctx, query, kind, limit)
			outcomes[i].Result, outcomes[i].Err = result, err
			sendProgress(opts.Progress, searchQueryUpdate(i+1, len(queries), query, err))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, fmt.Errorf("search interrupted: %w", err)
	}
	return outcomes, nil
}
