// Package universe resolves the tradable universe (ticker -> sector) with
// a tiered acquisition strategy: local CSV cache, structured CSV source,
// HTML reference-page scrape. The cache has no expiry; staleness is the
// caller's responsibility and a refresh is always explicit.
package universe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/httputil"
	"github.com/jshaw/alphascan/pkg/logger"
)

// Resolver loads and caches the constituent universe
type Resolver struct {
	httpClient  *httputil.Client
	cachePath   string
	primaryURL  string
	fallbackURL string
	logger      *logger.Logger
}

// NewResolver creates a new universe resolver
func NewResolver(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Resolver {
	return &Resolver{
		httpClient:  httpClient,
		cachePath:   cfg.Universe.CachePath,
		primaryURL:  cfg.Universe.PrimaryURL,
		fallbackURL: cfg.Universe.FallbackURL,
		logger:      log,
	}
}

// Load returns the constituent table. With an existing cache and no forced
// refresh it is served from disk without any network call. Otherwise the
// structured source is tried first, then the HTML fallback; whichever
// succeeds is persisted. When both sources fail the resolver fails hard:
// there is no sentinel universe to fall back to.
func (r *Resolver) Load(ctx context.Context, forceRefresh bool) ([]contracts.Constituent, error) {
	if !forceRefresh {
		if table, err := r.readCache(); err == nil {
			r.logger.WithFields(map[string]interface{}{
				"path":  r.cachePath,
				"count": len(table),
			}).Debug("Universe served from cache")
			return table, nil
		}
	}

	table, primaryErr := r.loadPrimary(ctx)
	if primaryErr != nil {
		r.logger.WithError(primaryErr).Warn("Primary universe source failed, trying fallback")

		var fallbackErr error
		table, fallbackErr = r.loadFallback(ctx)
		if fallbackErr != nil {
			return nil, fmt.Errorf(
				"failed to load universe from both sources: primary: %v; fallback: %w",
				primaryErr, fallbackErr,
			)
		}
	}

	if err := r.writeCache(table); err != nil {
		// A cache write failure is not fatal: the table is already in hand
		r.logger.WithError(err).Warn("Failed to persist universe cache")
	}

	r.logger.WithField("count", len(table)).Info("Universe loaded")
	return table, nil
}

// SectorToTickers groups the universe by sector. Blank symbols and sectors
// are trimmed out; duplicate rows for the same symbol are passed through,
// consumers are expected to behave idempotently.
func (r *Resolver) SectorToTickers(ctx context.Context, forceRefresh bool) (contracts.SectorMap, error) {
	table, err := r.Load(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	mapping := make(contracts.SectorMap)
	for _, row := range table {
		sector := strings.TrimSpace(row.Sector)
		symbol := strings.TrimSpace(row.Symbol)
		if sector == "" || symbol == "" {
			continue
		}
		mapping[sector] = append(mapping[sector], symbol)
	}

	return mapping, nil
}

// readCache loads the universe from the local CSV cache
func (r *Resolver) readCache() ([]contracts.Constituent, error) {
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return nil, err
	}

	table, err := parseConstituentCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse cached universe: %w", err)
	}
	return table, nil
}

// writeCache persists the universe to the local CSV cache
func (r *Resolver) writeCache(table []contracts.Constituent) error {
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := encodeConstituentCSV(table)
	if err != nil {
		return fmt.Errorf("encode universe: %w", err)
	}

	if err := os.WriteFile(r.cachePath, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// loadPrimary fetches the structured CSV source
func (r *Resolver) loadPrimary(ctx context.Context) ([]contracts.Constituent, error) {
	body, err := r.httpClient.GetBody(ctx, r.primaryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch primary source: %w", err)
	}

	table, err := parseConstituentCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse primary source: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("primary source returned no constituents")
	}
	return table, nil
}

// loadFallback scrapes the HTML reference page
func (r *Resolver) loadFallback(ctx context.Context) ([]contracts.Constituent, error) {
	body, err := r.httpClient.GetBody(ctx, r.fallbackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback page: %w", err)
	}

	table, err := parseConstituentHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse fallback page: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("fallback page yielded no constituents")
	}
	return table, nil
}
