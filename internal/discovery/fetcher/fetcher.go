// Package fetcher implements the per-source discovery clients. Each fetcher
// issues exactly one outbound request per invocation and carries a curated
// fallback catalog served when the live source is unreachable.
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/errors"
	"funding-advisor/internal/common/httpclient"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/discovery/fetcher/catalog"
	"funding-advisor/internal/models"
)

// Fetcher is one external origin of funding programs.
type Fetcher interface {
	Source() models.Source
	// Domain is the rate-limiting key shared by all requests to this origin.
	Domain() string
	// QueryParams are the normalized inputs the cache key is derived from.
	QueryParams(profile *models.CompanyProfile) map[string]string
	// Fetch issues one outbound request and returns the parsed programs.
	Fetch(ctx context.Context, profile *models.CompanyProfile) ([]models.FundingProgram, error)
	// Fallback is the curated catalog served when Fetch fails.
	Fallback() []models.FundingProgram
	// TTL is how long this fetcher's results stay valid in the cache.
	TTL() time.Duration
}

// buildFunc turns one extracted (name, description) candidate into a program
// with source-specific classification.
type buildFunc func(name, description string) models.FundingProgram

// Scraper fetches a source's public listing page and extracts programs from
// its markup.
type Scraper struct {
	source   models.Source
	cfg      config.SourceConfig
	ttl      time.Duration
	client   *httpclient.Client
	log      logger.Logger
	fallback []models.FundingProgram
	build    buildFunc
}

func newScraper(source models.Source, cfg config.SourceConfig, ttl time.Duration, client *httpclient.Client, log logger.Logger, build buildFunc) (*Scraper, error) {
	fallback, err := catalog.Load(source)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		source:   source,
		cfg:      cfg,
		ttl:      ttl,
		client:   client,
		log:      log.WithFields(map[string]interface{}{"source": string(source)}),
		fallback: fallback,
		build:    build,
	}, nil
}

// NewBusinessFinland creates the Business Finland listing scraper.
func NewBusinessFinland(cfg config.SourceConfig, ttl time.Duration, client *httpclient.Client, log logger.Logger) (*Scraper, error) {
	return newScraper(models.SourceBusinessFinland, cfg, ttl, client, log, buildBusinessFinlandProgram)
}

// NewELY creates the ELY Centre listing scraper.
func NewELY(cfg config.SourceConfig, ttl time.Duration, client *httpclient.Client, log logger.Logger) (*Scraper, error) {
	return newScraper(models.SourceELY, cfg, ttl, client, log, buildELYProgram)
}

// NewFinnvera creates the Finnvera listing scraper.
func NewFinnvera(cfg config.SourceConfig, ttl time.Duration, client *httpclient.Client, log logger.Logger) (*Scraper, error) {
	return newScraper(models.SourceFinnvera, cfg, ttl, client, log, buildFinnveraProgram)
}

func (s *Scraper) Source() models.Source { return s.source }

func (s *Scraper) Domain() string { return s.cfg.Domain }

func (s *Scraper) TTL() time.Duration { return s.ttl }

func (s *Scraper) Fallback() []models.FundingProgram { return s.fallback }

// QueryParams covers the listing URL only: the page content does not depend
// on the company profile, so all profiles share one cache entry per source.
func (s *Scraper) QueryParams(_ *models.CompanyProfile) map[string]string {
	return map[string]string{"url": s.cfg.URL}
}

// Fetch downloads the configured listing page and extracts programs. A page
// where only some sections parse returns the parseable subset; an error is
// returned only when the whole response is unusable.
func (s *Scraper) Fetch(ctx context.Context, _ *models.CompanyProfile) ([]models.FundingProgram, error) {
	start := time.Now()

	resp, err := s.client.Get(ctx, s.cfg.URL)
	if err != nil {
		return nil, errors.NewNetworkFailure(string(s.source), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewHTTPStatusFailure(string(s.source), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewParseFailure(string(s.source), err)
	}

	candidates := extractCandidates(doc)
	if len(candidates) == 0 {
		return nil, errors.NewParseFailure(string(s.source), fmt.Errorf("no program sections recognized"))
	}

	programs := make([]models.FundingProgram, 0, len(candidates))
	for _, c := range candidates {
		p := s.build(c.name, c.description)
		p.ProgramID = programID(s.source, c.name)
		p.Source = s.source
		if p.ApplicationURL == "" {
			p.ApplicationURL = s.cfg.URL
		}
		programs = append(programs, p)
	}

	metrics.FetchDuration.WithLabelValues(string(s.source)).Observe(time.Since(start).Seconds())
	s.log.Info("Fetched funding programs", map[string]interface{}{
		"programs":    len(programs),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return programs, nil
}

// programID is stable across fetches so cached and live results identify the
// same offering identically.
func programID(source models.Source, name string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(name))))
	return string(source) + "-" + hex.EncodeToString(sum[:])[:8]
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
