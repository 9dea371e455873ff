package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/providers"
	"github.com/rs/zerolog"
)

// Source labels reported per category.
const (
	SourcePrimary = "primary"
	SourceNone    = "none"
)

// Resolution is the outcome of resolving one category.
type Resolution struct {
	Data        models.PriceMap
	SourceLabel string
	Provider    string
}

// Resolver tries a primary fetcher and then its backups in order, stopping at
// the first non-empty result. Attempts run one at a time, each bounded by
// timeout.
type Resolver struct {
	timeout time.Duration
	log     zerolog.Logger
}

func NewResolver(timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		timeout: timeout,
		log:     log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve never fails: when every source errors or comes back empty the result
// is an empty map labelled "none". Nil fetchers are skipped but keep their
// position for labelling.
func (r *Resolver) Resolve(ctx context.Context, category models.Category, primary providers.Fetcher, backups ...providers.Fetcher) Resolution {
	sources := append([]providers.Fetcher{primary}, backups...)

	for i, f := range sources {
		if f == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		label := sourceLabel(i)
		prices, err := r.attempt(ctx, f)
		if err != nil {
			r.log.Warn().Err(err).
				Str("category", string(category)).
				Str("provider", f.Name()).
				Str("source", label).
				Msg("Price source failed")
			continue
		}
		if len(prices) == 0 {
			r.log.Warn().
				Str("category", string(category)).
				Str("provider", f.Name()).
				Str("source", label).
				Msg("Price source returned no rows")
			continue
		}
		return Resolution{Data: prices, SourceLabel: label, Provider: f.Name()}
	}

	r.log.Error().Str("category", string(category)).Msg("All price sources failed")
	return Resolution{Data: models.PriceMap{}, SourceLabel: SourceNone}
}

func (r *Resolver) attempt(ctx context.Context, f providers.Fetcher) (prices models.PriceMap, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			prices = nil
			err = fmt.Errorf("panic in %s: %v", f.Name(), rec)
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return f.Fetch(ctx)
}

func sourceLabel(i int) string {
	if i == 0 {
		return SourcePrimary
	}
	return fmt.Sprintf("backup%d", i)
}
