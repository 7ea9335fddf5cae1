package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
	"github.com/jshaw/alphascan/pkg/redis"
)

// CachedProvider wraps a Provider with a short-TTL bar cache so the
// interactive path and the scan job do not refetch the same history within
// a session. Cache errors degrade to a direct fetch, never to failure.
type CachedProvider struct {
	inner  Provider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider creates a caching wrapper around a provider
func NewCachedProvider(inner Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// barsPayload is the cache serialization of a frame
type barsPayload struct {
	Dates  []int64   `json:"dates"`
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// History returns cached bars when available, fetching and caching
// otherwise
func (p *CachedProvider) History(ctx context.Context, ticker string, lookbackDays int) (*series.Frame, error) {
	key := fmt.Sprintf("bars:%s:%d", ticker, lookbackDays)

	var payload barsPayload
	hit, err := p.cache.Get(ctx, key, &payload)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Bar cache read failed")
	}
	if hit {
		frame, err := payload.toFrame()
		if err == nil {
			return frame, nil
		}
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Bar cache entry unusable")
	}

	frame, err := p.inner.History(ctx, ticker, lookbackDays)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, fromFrame(frame), p.ttl); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Bar cache write failed")
	}

	return frame, nil
}

func fromFrame(f *series.Frame) barsPayload {
	payload := barsPayload{Dates: make([]int64, f.Len())}
	for i, d := range f.Dates() {
		payload.Dates[i] = d.Unix()
	}

	if col, ok := f.Column(series.ColOpen); ok {
		payload.Open = col
	}
	if col, ok := f.Column(series.ColHigh); ok {
		payload.High = col
	}
	if col, ok := f.Column(series.ColLow); ok {
		payload.Low = col
	}
	if col, ok := f.Column(series.ColClose); ok {
		payload.Close = col
	}
	if col, ok := f.Column(series.ColVolume); ok {
		payload.Volume = col
	}

	return payload
}

func (p barsPayload) toFrame() (*series.Frame, error) {
	dates := make([]time.Time, len(p.Dates))
	for i, ts := range p.Dates {
		dates[i] = time.Unix(ts, 0).UTC()
	}

	frame, err := series.New(dates)
	if err != nil {
		return nil, err
	}

	columns := map[string][]float64{
		series.ColOpen:   p.Open,
		series.ColHigh:   p.High,
		series.ColLow:    p.Low,
		series.ColClose:  p.Close,
		series.ColVolume: p.Volume,
	}
	for name, values := range columns {
		if len(values) == 0 {
			continue
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, err
		}
	}

	return frame, nil
}
