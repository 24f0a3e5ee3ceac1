// Package cache keeps asset profiles in memory for a limited time.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/advisor"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the profile of a ticker from the source of truth.
type LoadFunc func(ctx context.Context, ticker string) (*advisor.Asset, error)

// Profiles is a bounded cache of asset profiles, each entry expiring after a TTL.
// A singleflight.Group prevents duplicate in-flight loads for the same ticker.
//
// It is safe for concurrent use.
type Profiles struct {
	lru   *expirable.LRU[string, *advisor.Asset]
	load  LoadFunc
	group singleflight.Group
	log   zerolog.Logger
}

// New returns a cache of at most size profiles (unbounded when size <= 0) living ttl
// (forever when ttl <= 0), filled with load on misses.
func New(size int, ttl time.Duration, load LoadFunc, log zerolog.Logger) *Profiles {
	return &Profiles{
		lru:  expirable.NewLRU[string, *advisor.Asset](max(size, 0), nil, max(ttl, 0)),
		load: load,
		log:  log.With().Str("component", "cache").Logger(),
	}
}

// Get returns the profile of ticker, loading it on a miss.
func (p *Profiles) Get(ctx context.Context, ticker string) (*advisor.Asset, error) {
	if a, ok := p.lru.Get(ticker); ok {
		return a, nil
	}
	v, err, shared := p.group.Do(ticker, func() (any, error) {
		a, err := p.load(ctx, ticker)
		if err != nil {
			return nil, err
		}
		p.lru.Add(ticker, a)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", ticker, err)
	}
	p.log.Debug().Str("ticker", ticker).Bool("shared", shared).Msg("cache miss")
	return v.(*advisor.Asset), nil
}

// GetAll returns the profiles of tickers, in order.
func (p *Profiles) GetAll(ctx context.Context, tickers ...string) ([]*advisor.Asset, error) {
	assets := make([]*advisor.Asset, len(tickers))
	for i, t := range tickers {
		a, err := p.Get(ctx, t)
		if err != nil {
			return nil, err
		}
		assets[i] = a
	}
	return assets, nil
}

// Add stores a profile, replacing the previous one.
func (p *Profiles) Add(a *advisor.Asset) { p.lru.Add(a.Ticker, a) }

// Remove evicts a profile.
func (p *Profiles) Remove(ticker string) { p.lru.Remove(ticker) }

// Len returns the number of live profiles.
func (p *Profiles) Len() int { return p.lru.Len() }

// Purge evicts every profile.
func (p *Profiles) Purge() { p.lru.Purge() }

// FromSnapshot returns a LoadFunc reading profiles from a snapshot file. The file is
// read on every call, so an updated snapshot is seen once cached profiles expire.
func FromSnapshot(filename string) LoadFunc {
	return func(ctx context.Context, ticker string) (*advisor.Asset, error) {
		s, err := advisor.LoadSnapshot(filename)
		if err != nil {
			return nil, err
		}
		if a := s.Asset(ticker); a != nil {
			return a, nil
		}
		return nil, fmt.Errorf("%w: unknown ticker %q in %s", advisor.ErrInvalidInput, ticker, filename)
	}
}
