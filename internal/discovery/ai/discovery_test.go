package ai

import (
	"context"
	"testing"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/errors"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/models"
)

const validPayload = `[
  {
    "program_name": "Tempo Funding",
    "description": "Grant for young startups testing international demand.",
    "funding_type": "grant",
    "min_funding": 0,
    "max_funding": 60000,
    "eligible_industries": ["technology"],
    "eligible_regions": [],
    "target_stages": ["pre-seed", "seed", "unicorn"],
    "application_deadline": "",
    "application_url": "https://www.businessfinland.fi/tempo",
    "focus_areas": ["internationalization"],
    "requirements": []
  },
  {
    "program_name": "",
    "description": "Nameless entries are dropped.",
    "funding_type": "grant"
  }
]`

// stubCompleter scripts completion outcomes per attempt.
type stubCompleter struct {
	calls     int
	responses []func() (*openai.ChatCompletion, error)
}

func (s *stubCompleter) complete(_ context.Context, _ openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i]()
}

func completionWith(content string) func() (*openai.ChatCompletion, error) {
	return func() (*openai.ChatCompletion, error) {
		return &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: content}},
			},
		}, nil
	}
}

func failure() func() (*openai.ChatCompletion, error) {
	return func() (*openai.ChatCompletion, error) { return nil, assert.AnError }
}

func newTestDiscovery(t *testing.T, stub *stubCompleter) *Discovery {
	t.Helper()
	d, err := New(config.AIConfig{
		Enabled:    true,
		BaseURL:    "https://api.x.ai/v1",
		APIKey:     "test-key",
		Model:      "grok-4-1-fast-non-reasoning",
		Timeout:    1000,
		MaxRetries: 3,
		Domain:     "api.x.ai",
	}, 24*time.Hour, logger.NewTestLogger(t))
	require.NoError(t, err)
	d.client = stub
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return d
}

func testProfile() *models.CompanyProfile {
	return &models.CompanyProfile{
		CompanyName:       "Testi Oy",
		Industry:          "software",
		Region:            "uusimaa",
		EmployeeCount:     8,
		FundingNeedAmount: 150000,
		GrowthStage:       models.GrowthStageSeed,
		FundingPurpose:    models.FundingPurposeRDI,
	}
}

func TestFetchParsesCompletion(t *testing.T) {
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){completionWith(validPayload)}}
	d := newTestDiscovery(t, stub)

	programs, err := d.Fetch(context.Background(), testProfile())
	require.NoError(t, err)
	require.Len(t, programs, 1, "nameless entries are dropped")

	p := programs[0]
	assert.Equal(t, models.SourceAIDiscovery, p.Source)
	assert.Equal(t, "Tempo Funding", p.ProgramName)
	assert.Equal(t, models.FundingTypeGrant, p.FundingType)
	assert.Equal(t, int64(60000), p.MaxFunding)
	assert.Equal(t, []models.GrowthStage{models.GrowthStagePreSeed, models.GrowthStageSeed}, p.TargetStages,
		"unknown stages are dropped")
	assert.NotEmpty(t, p.ProgramID)
}

func TestFetchStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + validPayload + "\n```"
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){completionWith(fenced)}}
	d := newTestDiscovery(t, stub)

	programs, err := d.Fetch(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Len(t, programs, 1)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){
		failure(),
		failure(),
		completionWith(validPayload),
	}}
	d := newTestDiscovery(t, stub)

	programs, err := d.Fetch(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Len(t, programs, 1)
	assert.Equal(t, 3, stub.calls)
}

func TestFetchExhaustsRetries(t *testing.T) {
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){failure()}}
	d := newTestDiscovery(t, stub)

	_, err := d.Fetch(context.Background(), testProfile())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAIDiscoveryFailed, errors.CodeOf(err))
	assert.Equal(t, 3, stub.calls, "configured retry budget is spent")
}

func TestFetchUnparseablePayload(t *testing.T) {
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){completionWith("I cannot help with that.")}}
	d := newTestDiscovery(t, stub)

	_, err := d.Fetch(context.Background(), testProfile())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAIDiscoveryFailed, errors.CodeOf(err))
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	stub := &stubCompleter{responses: []func() (*openai.ChatCompletion, error){failure()}}
	d := newTestDiscovery(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Fetch(ctx, testProfile())
	require.Error(t, err)
	assert.Less(t, stub.calls, 3, "no retries after cancellation")
}

func TestQueryParamsDifferPerProfile(t *testing.T) {
	d := newTestDiscovery(t, &stubCompleter{responses: []func() (*openai.ChatCompletion, error){failure()}})

	a := d.QueryParams(testProfile())
	other := testProfile()
	other.Industry = "biotech"
	b := d.QueryParams(other)
	assert.NotEqual(t, a, b)
}

func TestFallbackCatalog(t *testing.T) {
	d := newTestDiscovery(t, &stubCompleter{responses: []func() (*openai.ChatCompletion, error){failure()}})

	fallback := d.Fallback()
	require.NotEmpty(t, fallback)
	for _, p := range fallback {
		assert.Equal(t, models.SourceAIDiscovery, p.Source)
	}
	assert.Equal(t, 24*time.Hour, d.TTL())
	assert.Equal(t, "api.x.ai", d.Domain())
}
