// Package ai implements the Grok-backed discovery variant. It satisfies the
// same fetcher contract as the page scrapers but asks an OpenAI-compatible
// completion endpoint for current Finnish and EU funding programs matching
// the company profile.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/errors"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/discovery/fetcher/catalog"
	"funding-advisor/internal/models"
)

const systemPrompt = "You are a Finnish business funding expert. You know the current " +
	"funding programs of Business Finland, ELY Centres, Finnvera and EU instruments " +
	"available to Finnish companies. Respond with valid JSON only, no markdown."

// completer is the slice of the OpenAI client the discovery uses. Narrowed
// for test substitution.
type completer interface {
	complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiCompleter struct {
	client openai.Client
}

func (c *openaiCompleter) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// Discovery asks the model for funding programs tailored to one profile.
type Discovery struct {
	cfg      config.AIConfig
	ttl      time.Duration
	client   completer
	log      logger.Logger
	fallback []models.FundingProgram
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates the AI discovery fetcher.
func New(cfg config.AIConfig, ttl time.Duration, log logger.Logger) (*Discovery, error) {
	fallback, err := catalog.Load(models.SourceAIDiscovery)
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)

	return &Discovery{
		cfg:      cfg,
		ttl:      ttl,
		client:   &openaiCompleter{client: client},
		log:      log.WithFields(map[string]interface{}{"source": string(models.SourceAIDiscovery)}),
		fallback: fallback,
		sleep:    sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Discovery) Source() models.Source { return models.SourceAIDiscovery }

func (d *Discovery) Domain() string { return d.cfg.Domain }

func (d *Discovery) TTL() time.Duration { return d.ttl }

func (d *Discovery) Fallback() []models.FundingProgram { return d.fallback }

// QueryParams covers every profile field the prompt is built from, so
// differing companies never share a cache entry while repeat runs for the
// same company do.
func (d *Discovery) QueryParams(profile *models.CompanyProfile) map[string]string {
	return map[string]string{
		"industry": profile.Industry,
		"keywords": strings.Join(profile.IndustryKeywords, ","),
		"region":   profile.Region,
		"stage":    string(profile.GrowthStage),
		"purpose":  string(profile.FundingPurpose),
		"amount":   strconv.FormatInt(profile.FundingNeedAmount, 10),
		"size":     strconv.Itoa(profile.EmployeeCount),
	}
}

// aiProgram is the shape the model is instructed to emit.
type aiProgram struct {
	ProgramName        string   `json:"program_name"`
	Description        string   `json:"description"`
	FundingType        string   `json:"funding_type"`
	MinFunding         int64    `json:"min_funding"`
	MaxFunding         int64    `json:"max_funding"`
	EligibleIndustries []string `json:"eligible_industries"`
	EligibleRegions    []string `json:"eligible_regions"`
	TargetStages       []string `json:"target_stages"`
	Deadline           string   `json:"application_deadline"`
	ApplicationURL     string   `json:"application_url"`
	FocusAreas         []string `json:"focus_areas"`
	Requirements       []string `json:"requirements"`
}

// Fetch queries the completion endpoint, retrying transient failures with
// exponential backoff. Each attempt is bounded by the configured timeout.
func (d *Discovery) Fetch(ctx context.Context, profile *models.CompanyProfile) ([]models.FundingProgram, error) {
	start := time.Now()
	prompt := buildPrompt(profile)

	attempts := d.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := 2 * time.Second << (attempt - 1)
			d.log.Warn("Retrying AI discovery", map[string]interface{}{
				"attempt": attempt + 1,
				"backoff": backoff.String(),
			})
			if err := d.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		programs, err := d.fetchOnce(ctx, prompt)
		if err == nil {
			metrics.FetchDuration.WithLabelValues(string(models.SourceAIDiscovery)).Observe(time.Since(start).Seconds())
			d.log.Info("AI discovery completed", map[string]interface{}{
				"programs":    len(programs),
				"attempts":    attempt + 1,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return programs, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (d *Discovery) fetchOnce(ctx context.Context, prompt string) ([]models.FundingProgram, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.Timeout)*time.Millisecond)
	defer cancel()

	response, err := d.client.complete(callCtx, openai.ChatCompletionNewParams{
		Model: d.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(4000),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, errors.NewAITimeout()
		}
		return nil, errors.NewAIDiscoveryFailed(err)
	}

	if len(response.Choices) == 0 {
		return nil, errors.NewAIDiscoveryFailed(fmt.Errorf("empty completion response"))
	}

	return parsePrograms(response.Choices[0].Message.Content)
}

func parsePrograms(content string) ([]models.FundingProgram, error) {
	var raw []aiProgram
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, errors.NewAIDiscoveryFailed(fmt.Errorf("unparseable completion payload: %w", err))
	}

	programs := make([]models.FundingProgram, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p.ProgramName) == "" {
			continue
		}
		programs = append(programs, models.FundingProgram{
			ProgramID:           aiProgramID(p.ProgramName),
			Source:              models.SourceAIDiscovery,
			ProgramName:         strings.TrimSpace(p.ProgramName),
			Description:         strings.TrimSpace(p.Description),
			FundingType:         normalizeFundingType(p.FundingType),
			MinFunding:          p.MinFunding,
			MaxFunding:          p.MaxFunding,
			EligibleIndustries:  p.EligibleIndustries,
			EligibleRegions:     p.EligibleRegions,
			TargetStages:        normalizeStages(p.TargetStages),
			ApplicationDeadline: p.Deadline,
			ApplicationURL:      p.ApplicationURL,
			FocusAreas:          p.FocusAreas,
			Requirements:        p.Requirements,
		})
	}
	if len(programs) == 0 {
		return nil, errors.NewAIDiscoveryFailed(fmt.Errorf("completion contained no usable programs"))
	}
	return programs, nil
}

// aiProgramID is stable per program name, matching the scrapers' scheme.
func aiProgramID(name string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(name))))
	return string(models.SourceAIDiscovery) + "-" + hex.EncodeToString(sum[:])[:8]
}

// stripFences removes a surrounding markdown code fence the model sometimes
// emits despite instructions.
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func normalizeFundingType(t string) models.FundingType {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "loan":
		return models.FundingTypeLoan
	case "guarantee":
		return models.FundingTypeGuarantee
	case "equity":
		return models.FundingTypeEquity
	default:
		return models.FundingTypeGrant
	}
}

func normalizeStages(stages []string) []models.GrowthStage {
	var out []models.GrowthStage
	for _, s := range stages {
		stage := models.GrowthStage(strings.ToLower(strings.TrimSpace(s)))
		if stage.Valid() {
			out = append(out, stage)
		}
	}
	return out
}

func buildPrompt(profile *models.CompanyProfile) string {
	var sb strings.Builder
	sb.WriteString("Find currently available funding programs for this Finnish company:\n\n")
	fmt.Fprintf(&sb, "Industry: %s\n", profile.Industry)
	if len(profile.IndustryKeywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(profile.IndustryKeywords, ", "))
	}
	if profile.Region != "" {
		fmt.Fprintf(&sb, "Region: %s\n", profile.Region)
	}
	fmt.Fprintf(&sb, "Employees: %d\n", profile.EmployeeCount)
	fmt.Fprintf(&sb, "Growth stage: %s\n", profile.GrowthStage)
	fmt.Fprintf(&sb, "Funding need: %d EUR\n", profile.FundingNeedAmount)
	fmt.Fprintf(&sb, "Funding purpose: %s\n", profile.FundingPurpose)
	if profile.AdditionalInfo != "" {
		fmt.Fprintf(&sb, "Additional information: %s\n", profile.AdditionalInfo)
	}
	sb.WriteString("\nRespond with a JSON array of programs. Each element must have exactly these fields:\n")
	sb.WriteString(`[{"program_name": "...", "description": "...", "funding_type": "grant|loan|guarantee|equity", ` +
		`"min_funding": 0, "max_funding": 0, "eligible_industries": [], "eligible_regions": [], ` +
		`"target_stages": ["pre-seed|seed|growth|scale-up"], "application_deadline": "YYYY-MM-DD or empty", ` +
		`"application_url": "...", "focus_areas": [], "requirements": []}]`)
	sb.WriteString("\n\nInclude only programs a company with this profile is plausibly eligible for. ")
	sb.WriteString("Use 0 for unknown funding bounds and an empty string for programs without a fixed deadline.")
	return sb.String()
}
