// Package advisor composes the full analysis pipeline: registry enrichment,
// multi-source discovery and deterministic matching.
package advisor

import (
	"context"

	"github.com/google/uuid"

	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/models"
)

// Enricher fills in company details from an external registry.
type Enricher interface {
	Enrich(ctx context.Context, profile *models.CompanyProfile) error
}

// Discoverer runs one discovery cycle over all configured sources.
type Discoverer interface {
	Discover(ctx context.Context, profile *models.CompanyProfile) *models.DiscoveryReport
}

// Matcher ranks programs against a profile.
type Matcher interface {
	Match(profile *models.CompanyProfile, programs []models.FundingProgram) []models.Recommendation
}

// CacheCleaner empties the discovery result cache.
type CacheCleaner interface {
	Clear(ctx context.Context) (int, error)
}

// Service is the advisor entry point used by the HTTP layer.
type Service struct {
	enricher   Enricher
	discoverer Discoverer
	matcher    Matcher
	cache      CacheCleaner
	log        logger.Logger
}

// NewService wires the pipeline stages together.
func NewService(enricher Enricher, discoverer Discoverer, matcher Matcher, cache CacheCleaner, log logger.Logger) *Service {
	return &Service{
		enricher:   enricher,
		discoverer: discoverer,
		matcher:    matcher,
		cache:      cache,
		log:        log,
	}
}

// AnalysisResult is the outcome of one advisory request.
type AnalysisResult struct {
	RequestID       string                  `json:"request_id"`
	Profile         models.CompanyProfile   `json:"profile"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Sources         []models.SourceStatus   `json:"sources"`
}

// Analyze runs the pipeline for one company. Enrichment failures are logged
// and skipped; discovery degrades per source, so analysis as a whole only
// fails on context cancellation.
func (s *Service) Analyze(ctx context.Context, profile *models.CompanyProfile) (*AnalysisResult, error) {
	requestID := uuid.NewString()
	log := s.log.WithFields(map[string]interface{}{
		"request_id": requestID,
		"company":    profile.CompanyName,
	})
	log.Info("Analysis started", map[string]interface{}{
		"industry": profile.Industry,
		"stage":    string(profile.GrowthStage),
	})

	if err := s.enricher.Enrich(ctx, profile); err != nil {
		log.WithError(err).Warn("Enrichment failed, continuing with provided profile", nil)
	}

	report := s.discoverer.Discover(ctx, profile)
	if err := ctx.Err(); err != nil {
		metrics.AnalyzeRequests.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	recommendations := s.matcher.Match(profile, report.Programs)

	log.Info("Analysis completed", map[string]interface{}{
		"programs":        len(report.Programs),
		"recommendations": len(recommendations),
	})
	metrics.AnalyzeRequests.WithLabelValues("ok").Inc()

	return &AnalysisResult{
		RequestID:       requestID,
		Profile:         *profile,
		Recommendations: recommendations,
		Sources:         report.Sources,
	}, nil
}

// ClearCache removes all cached discovery results and reports how many
// entries were dropped.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	removed, err := s.cache.Clear(ctx)
	if err != nil {
		s.log.WithError(err).Error("Cache clear failed", nil)
		return 0, err
	}
	return removed, nil
}
