// Package scan runs the per-sector scoring pipeline: fetch history, gate on
// liquidity and price, compute factor and target bundles, combine into the
// composite alpha score, and rank.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/factors"
	"github.com/jshaw/alphascan/internal/marketdata"
	"github.com/jshaw/alphascan/internal/sentiment"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/internal/targets"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/logger"
)

// ErrSkipped reports that a ticker was excluded from the scan. Exclusion is
// silent at the sector level: absence from the output is the only signal.
var ErrSkipped = errors.New("ticker skipped")

// Scanner scores tickers and ranks them within sectors
type Scanner struct {
	provider     marketdata.Provider
	factorEngine *factors.Engine
	targetEngine *targets.Engine
	sentScorer   sentiment.Scorer
	cfg          config.ScanConfig
	lookbackDays int
	logger       *logger.Logger
}

// NewScanner creates a new scanner
func NewScanner(
	provider marketdata.Provider,
	factorEngine *factors.Engine,
	targetEngine *targets.Engine,
	sentScorer sentiment.Scorer,
	cfg *config.Config,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		provider:     provider,
		factorEngine: factorEngine,
		targetEngine: targetEngine,
		sentScorer:   sentScorer,
		cfg:          cfg.Scan,
		lookbackDays: cfg.MarketData.LookbackDays,
		logger:       log,
	}
}

// ScoreTicker runs the full per-ticker pipeline. Any stage failure —
// fetch error, insufficient history, failed eligibility gate, undefined
// targets — returns an error wrapping ErrSkipped; sector/rank/date are
// filled in by the caller.
func (s *Scanner) ScoreTicker(ctx context.Context, ticker string) (*contracts.Recommendation, error) {
	frame, err := s.provider.History(ctx, ticker, s.lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: fetch failed: %v", ErrSkipped, ticker, err)
	}

	if frame.Len() < s.cfg.MinHistoryRows {
		return nil, fmt.Errorf("%w: %s: %d bars, need %d", ErrSkipped, ticker, frame.Len(), s.cfg.MinHistoryRows)
	}

	close, ok := frame.Column(series.ColClose)
	if !ok {
		return nil, fmt.Errorf("%w: %s: close column unavailable", ErrSkipped, ticker)
	}
	lastClose := series.Last(close)
	if !series.IsUsable(lastClose) {
		return nil, fmt.Errorf("%w: %s: last close unusable", ErrSkipped, ticker)
	}
	if lastClose < s.cfg.MinPrice {
		return nil, fmt.Errorf("%w: %s: price %.2f below floor", ErrSkipped, ticker, lastClose)
	}

	vol, ok := frame.Column(series.ColVolume)
	if !ok {
		return nil, fmt.Errorf("%w: %s: volume column unavailable", ErrSkipped, ticker)
	}
	avgVol20 := stat.Mean(series.Tail(vol, 20), nil)
	if !series.IsUsable(avgVol20) || avgVol20 < s.cfg.MinAvgVolume {
		return nil, fmt.Errorf("%w: %s: avg volume below floor", ErrSkipped, ticker)
	}

	bundle := s.factorEngine.Compute(frame)

	targetBundle, err := s.targetEngine.Compute(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSkipped, ticker, err)
	}

	sentScore, err := s.sentScorer.Score(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: sentiment failed: %v", ErrSkipped, ticker, err)
	}

	techScore := int(math.Round(float64(bundle.Momentum+bundle.TrendStrength) / 2))
	alphaScore := int(math.Round(float64(techScore+sentScore) / 2))
	finalScore := float64(techScore)*s.cfg.TechWeight + float64(sentScore)*s.cfg.SentWeight

	bundle.TechScore = techScore
	bundle.SentScore = sentScore

	return &contracts.Recommendation{
		Ticker:     ticker,
		AlphaScore: alphaScore,
		FinalScore: math.Round(finalScore*100) / 100,
		Factors:    bundle,
		Targets:    targetBundle,
	}, nil
}

// ScanSector scores every ticker in a sector concurrently and returns the
// ranked top N. Per-ticker failures are dropped; an empty result is a
// valid "no data currently" signal, not an error.
func (s *Scanner) ScanSector(ctx context.Context, asOf time.Time, sector string, tickers []string) []contracts.Recommendation {
	results := s.fanOut(ctx, tickers)

	rankRecommendations(results)

	if len(results) > s.cfg.TopN {
		results = results[:s.cfg.TopN]
	}

	for i := range results {
		results[i].AsOfDate = asOf
		results[i].Sector = sector
		results[i].Rank = i + 1
	}

	s.logger.WithFields(map[string]interface{}{
		"sector":  sector,
		"scanned": len(tickers),
		"kept":    len(results),
	}).Info("Sector scan completed")

	return results
}

// fanOut scores tickers on a bounded worker pool. Completion order is
// unspecified; the caller's sort imposes the only ordering guarantee.
func (s *Scanner) fanOut(ctx context.Context, tickers []string) []contracts.Recommendation {
	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan *contracts.Recommendation, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, tickerCh, resultCh)
		}()
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]contracts.Recommendation, 0, len(tickers))
	for rec := range resultCh {
		results = append(results, *rec)
	}
	return results
}

func (s *Scanner) worker(ctx context.Context, tickerCh <-chan string, resultCh chan<- *contracts.Recommendation) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rec, err := s.ScoreTicker(ctx, ticker)
		if err != nil {
			// Excluded tickers are logged, never propagated
			s.logger.WithField("reason", err.Error()).Debug("Ticker excluded from scan")
			continue
		}
		resultCh <- rec
	}
}

// Rank orders a combined recommendation list the same way a sector scan
// orders its own: alpha descending, ATR percent ascending, ticker. Used
// when merging the per-sector lists into one board.
func Rank(recs []contracts.Recommendation) {
	rankRecommendations(recs)
}

// rankRecommendations sorts by alpha score descending, breaking ties by
// ascending ATR percent (undefined last) and finally by ticker so a rerun
// over the same inputs yields an identical ordering regardless of worker
// completion order.
func rankRecommendations(recs []contracts.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].AlphaScore != recs[j].AlphaScore {
			return recs[i].AlphaScore > recs[j].AlphaScore
		}
		atrI := recs[i].Factors.ATRPercentOrWorst()
		atrJ := recs[j].Factors.ATRPercentOrWorst()
		if atrI != atrJ {
			return atrI < atrJ
		}
		return recs[i].Ticker < recs[j].Ticker
	})
}
