// Package discovery coordinates one discovery cycle across all configured
// sources: cache lookups, staggered concurrent fetches under rate limiting,
// and fallback catalogs for sources that fail.
package discovery

import (
	"context"
	"sync"
	"time"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/discovery/cache"
	"funding-advisor/internal/discovery/fetcher"
	"funding-advisor/internal/discovery/ratelimit"
	"funding-advisor/internal/models"
)

// Orchestrator runs discovery cycles. Safe for concurrent use; the rate
// limiter and per-domain connection slots are shared across cycles.
type Orchestrator struct {
	fetchers []fetcher.Fetcher
	cache    *cache.Store
	limiter  *ratelimit.Limiter
	cfg      config.DiscoveryConfig
	log      logger.Logger

	// slots caps concurrent in-flight requests per domain, independently of
	// the per-minute rate ceiling.
	slots map[string]chan struct{}

	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator over the given fetchers. Fetcher
// order is preserved in every report.
func NewOrchestrator(fetchers []fetcher.Fetcher, store *cache.Store, limiter *ratelimit.Limiter, cfg config.DiscoveryConfig, log logger.Logger) *Orchestrator {
	connections := cfg.PerDomainConnections
	if connections < 1 {
		connections = 1
	}
	slots := make(map[string]chan struct{})
	for _, f := range fetchers {
		if _, ok := slots[f.Domain()]; !ok {
			slots[f.Domain()] = make(chan struct{}, connections)
		}
	}
	return &Orchestrator{
		fetchers: fetchers,
		cache:    store,
		limiter:  limiter,
		cfg:      cfg,
		log:      log,
		slots:    slots,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type sourceResult struct {
	programs []models.FundingProgram
	status   models.SourceStatus
}

// Discover runs one cycle for the profile. Cached sources are served
// immediately; the rest are fetched concurrently with staggered launches.
// A failing source degrades to its fallback catalog, never to an error:
// Discover always returns a report covering every configured source, in
// configuration order.
func (o *Orchestrator) Discover(ctx context.Context, profile *models.CompanyProfile) *models.DiscoveryReport {
	results := make([]sourceResult, len(o.fetchers))

	var wg sync.WaitGroup
	misses := 0
	for i, f := range o.fetchers {
		key := cache.Key(f.Source(), f.QueryParams(profile))

		if programs, ok := o.cache.Get(ctx, key, f.TTL()); ok {
			results[i] = sourceResult{
				programs: programs,
				status: models.SourceStatus{
					Source:   f.Source(),
					Mode:     models.SourceModeCache,
					Programs: len(programs),
				},
			}
			continue
		}

		delay := time.Duration(misses) * o.cfg.Stagger()
		misses++

		wg.Add(1)
		go func(i int, f fetcher.Fetcher, key string, delay time.Duration) {
			defer wg.Done()
			results[i] = o.fetchSource(ctx, f, profile, key, delay)
		}(i, f, key, delay)
	}
	wg.Wait()

	report := &models.DiscoveryReport{
		Sources: make([]models.SourceStatus, 0, len(results)),
	}
	for _, r := range results {
		report.Programs = append(report.Programs, r.programs...)
		report.Sources = append(report.Sources, r.status)
		metrics.SourceResults.WithLabelValues(string(r.status.Source), string(r.status.Mode)).
			Add(float64(r.status.Programs))
	}
	return report
}

// fetchSource runs the paced live fetch for one source, degrading to the
// fallback catalog on any failure. Fallback results are never cached: the
// next cycle retries the live source.
func (o *Orchestrator) fetchSource(ctx context.Context, f fetcher.Fetcher, profile *models.CompanyProfile, key string, delay time.Duration) sourceResult {
	source := f.Source()

	if err := o.sleep(ctx, delay); err != nil {
		return o.fallback(f, err)
	}

	slot := o.slots[f.Domain()]
	select {
	case slot <- struct{}{}:
		defer func() { <-slot }()
	case <-ctx.Done():
		return o.fallback(f, ctx.Err())
	}

	if err := o.limiter.Acquire(ctx, f.Domain()); err != nil {
		return o.fallback(f, err)
	}

	programs, err := f.Fetch(ctx, profile)
	if err != nil {
		return o.fallback(f, err)
	}

	o.cache.Put(ctx, key, programs, f.TTL())
	o.log.Info("Source fetched live", map[string]interface{}{
		"source":   string(source),
		"programs": len(programs),
	})
	return sourceResult{
		programs: programs,
		status: models.SourceStatus{
			Source:   source,
			Mode:     models.SourceModeLive,
			Programs: len(programs),
		},
	}
}

func (o *Orchestrator) fallback(f fetcher.Fetcher, cause error) sourceResult {
	programs := f.Fallback()
	o.log.WithError(cause).Warn("Source failed, serving fallback catalog", map[string]interface{}{
		"source":   string(f.Source()),
		"programs": len(programs),
	})
	return sourceResult{
		programs: programs,
		status: models.SourceStatus{
			Source:   f.Source(),
			Mode:     models.SourceModeFallback,
			Programs: len(programs),
			Error:    cause.Error(),
		},
	}
}
