// Package enrichment fills in company details from the Finnish business
// information system (YTJ) open data API. Enrichment is best effort: a
// failed lookup never blocks the analysis.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/errors"
	"funding-advisor/internal/common/httpclient"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/models"
)

// Client looks up companies by business ID (Y-tunnus).
type Client struct {
	cfg    config.EnrichmentConfig
	client *httpclient.Client
	log    logger.Logger
}

// NewClient creates a YTJ lookup client.
func NewClient(cfg config.EnrichmentConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		log:    log,
	}
}

// ytjResponse is the BIS v1 payload shape. The registedOffice field name is
// misspelled in the upstream API.
type ytjResponse struct {
	Results []struct {
		Name             string `json:"name"`
		RegistedOffice   string `json:"registedOffice"`
		RegistrationDate string `json:"registrationDate"`
	} `json:"results"`
}

// Enrich expands the profile's industry keywords and fills OfficialName,
// RegistrationDate and, when the profile left it empty, Region from the
// registry record. The profile is modified in place; a returned error means
// the registry lookup failed, keyword expansion always happens.
func (c *Client) Enrich(ctx context.Context, profile *models.CompanyProfile) error {
	if len(profile.IndustryKeywords) == 0 {
		profile.IndustryKeywords = deriveKeywords(profile.Industry)
	}

	if !c.cfg.Enabled || strings.TrimSpace(profile.BusinessID) == "" {
		return nil
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimSpace(profile.BusinessID)
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return errors.NewEnrichmentFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.NewEnrichmentFailed(fmt.Errorf("business ID %s not found in registry", profile.BusinessID))
	}
	if resp.StatusCode != http.StatusOK {
		return errors.NewEnrichmentFailed(fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	var payload ytjResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return errors.NewEnrichmentFailed(err)
	}
	if len(payload.Results) == 0 {
		return errors.NewEnrichmentFailed(fmt.Errorf("registry record for %s is empty", profile.BusinessID))
	}

	record := payload.Results[0]
	profile.OfficialName = record.Name
	profile.RegistrationDate = record.RegistrationDate
	if profile.Region == "" && record.RegistedOffice != "" {
		profile.Region = strings.ToLower(record.RegistedOffice)
	}

	c.log.Info("Company profile enriched from registry", map[string]interface{}{
		"business_id":   profile.BusinessID,
		"official_name": record.Name,
	})
	return nil
}
