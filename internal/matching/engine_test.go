package matching

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, cfg config.MatchingConfig) *Engine {
	t.Helper()
	e := NewEngine(cfg, logger.NewTestLogger(t))
	e.now = func() time.Time { return testNow }
	return e
}

func softwareProfile() *models.CompanyProfile {
	return &models.CompanyProfile{
		CompanyName:       "Testi Oy",
		Industry:          "software",
		IndustryKeywords:  []string{"saas", "ai"},
		Region:            "uusimaa",
		EmployeeCount:     8,
		FundingNeedAmount: 250000,
		GrowthStage:       models.GrowthStageSeed,
		FundingPurpose:    models.FundingPurposeRDI,
	}
}

func grantProgram() models.FundingProgram {
	return models.FundingProgram{
		ProgramID:          "bf-12345678",
		Source:             models.SourceBusinessFinland,
		ProgramName:        "Innovation Funding",
		Description:        "Grant for innovative product development.",
		FundingType:        models.FundingTypeGrant,
		MinFunding:         100000,
		MaxFunding:         500000,
		EligibleIndustries: []string{"software", "technology"},
		TargetStages:       []models.GrowthStage{models.GrowthStageSeed, models.GrowthStageGrowth},
		ApplicationURL:     "https://example.fi/apply",
	}
}

func TestMatchPerfectFit(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	recs := e.Match(softwareProfile(), []models.FundingProgram{grantProgram()})

	require.Len(t, recs, 1)
	s := recs[0].Score
	assert.Equal(t, 1.0, s.Industry)
	assert.Equal(t, 1.0, s.Geography, "no regional restrictions")
	assert.Equal(t, 1.0, s.Size)
	assert.Equal(t, 1.0, s.Funding, "250k is inside [100k, 500k]")
	assert.Equal(t, 1.0, s.Deadline, "no deadline means always open")
	assert.InDelta(t, 1.0, s.Total, 1e-9)
	assert.NotEmpty(t, recs[0].Justification)
	assert.NotEmpty(t, recs[0].NextSteps)
}

func TestMatchTotalIsWeightedSum(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	program := grantProgram()
	program.EligibleIndustries = []string{"forestry"}
	program.EligibleRegions = []string{"lappi"}

	recs := e.Match(softwareProfile(), []models.FundingProgram{program})
	require.Len(t, recs, 1)
	s := recs[0].Score
	expected := 0.30*s.Industry + 0.25*s.Geography + 0.20*s.Size + 0.15*s.Funding + 0.10*s.Deadline
	assert.InDelta(t, expected, s.Total, 1e-9)
}

func TestMatchSubScoresBounded(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	programs := []models.FundingProgram{
		grantProgram(),
		{ProgramID: "x1", FundingType: models.FundingTypeLoan, MinFunding: 10000000,
			EligibleIndustries: []string{"mining"}, EligibleRegions: []string{"ahvenanmaa"},
			TargetStages: []models.GrowthStage{models.GrowthStageScaleUp}, ApplicationDeadline: "2020-01-01"},
		{ProgramID: "x2", FundingType: models.FundingTypeGuarantee, MaxFunding: 1000,
			ApplicationDeadline: "2026-03-10"},
	}

	recs := e.Match(softwareProfile(), programs)
	for _, r := range recs {
		for name, v := range map[string]float64{
			"industry": r.Score.Industry, "geography": r.Score.Geography,
			"size": r.Score.Size, "funding": r.Score.Funding,
			"deadline": r.Score.Deadline, "total": r.Score.Total,
		} {
			assert.GreaterOrEqualf(t, v, 0.0, "%s of %s", name, r.Program.ProgramID)
			assert.LessOrEqualf(t, v, 1.0, "%s of %s", name, r.Program.ProgramID)
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	programs := []models.FundingProgram{grantProgram()}
	programs[0].ApplicationDeadline = "2026-04-01"

	a := e.Match(softwareProfile(), programs)
	b := e.Match(softwareProfile(), programs)
	assert.Equal(t, a, b)
}

func TestMatchOrdering(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	good := grantProgram()
	bad := grantProgram()
	bad.ProgramID = "bf-bad"
	bad.EligibleIndustries = []string{"forestry"}
	bad.EligibleRegions = []string{"lappi"}

	recs := e.Match(softwareProfile(), []models.FundingProgram{bad, good})
	require.Len(t, recs, 2)
	assert.Equal(t, "bf-12345678", recs[0].Program.ProgramID)
	assert.GreaterOrEqual(t, recs[0].Score.Total, recs[1].Score.Total)
}

func TestMatchStableOnTies(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	first := grantProgram()
	second := grantProgram()
	second.ProgramID = "bf-second"

	recs := e.Match(softwareProfile(), []models.FundingProgram{first, second})
	require.Len(t, recs, 2)
	assert.Equal(t, "bf-12345678", recs[0].Program.ProgramID, "equal scores keep input order")
	assert.Equal(t, "bf-second", recs[1].Program.ProgramID)
}

func TestMatchMaxResultsAndMinScore(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{MaxResults: 1, MinScore: 0.5})
	good := grantProgram()
	mediocre := grantProgram()
	mediocre.ProgramID = "bf-mediocre"
	mediocre.EligibleIndustries = []string{"forestry"}
	mediocre.EligibleRegions = []string{"lappi"}
	mediocre.TargetStages = []models.GrowthStage{models.GrowthStageScaleUp}
	mediocre.MinFunding = 5000000
	mediocre.MaxFunding = 0
	mediocre.ApplicationDeadline = "2020-01-01"

	recs := e.Match(softwareProfile(), []models.FundingProgram{mediocre, good})
	require.Len(t, recs, 1)
	assert.Equal(t, "bf-12345678", recs[0].Program.ProgramID)
}

func TestFundingScoreCurve(t *testing.T) {
	program := models.FundingProgram{MinFunding: 100000, MaxFunding: 500000}

	cases := []struct {
		need     int64
		expected float64
	}{
		{250000, 1.0},
		{100000, 1.0},
		{500000, 1.0},
		// Below minimum: cubic rise toward the bound.
		{50000, 0.2 + 0.8*0.125},
		// Above maximum: exponential decay with relative overshoot.
		{600000, 0.2 + 0.8*0.8187307530779818},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("need_%d", tc.need), func(t *testing.T) {
			profile := &models.CompanyProfile{FundingNeedAmount: tc.need}
			assert.InDelta(t, tc.expected, fundingScore(profile, &program), 1e-9)
		})
	}
}

func TestFundingScoreUnboundedProgram(t *testing.T) {
	profile := &models.CompanyProfile{FundingNeedAmount: 250000}
	assert.Equal(t, neutralScore, fundingScore(profile, &models.FundingProgram{}))
}

func TestDeadlineScoreCurve(t *testing.T) {
	cases := []struct {
		name     string
		deadline string
		expected float64
	}{
		{"always_open", "", 1.0},
		{"far_future", "2026-06-01", 1.0},
		{"passed", "2026-02-01", 0.05},
		{"thirty_days_out", "2026-03-31", 0.3 + 0.7*0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			program := models.FundingProgram{ApplicationDeadline: tc.deadline}
			assert.InDelta(t, tc.expected, deadlineScore(&program, testNow), 1e-9)
		})
	}
}

func TestIndustryScoreLevels(t *testing.T) {
	profile := softwareProfile()

	open := models.FundingProgram{}
	assert.Equal(t, 1.0, industryScore(profile, &open))

	direct := models.FundingProgram{EligibleIndustries: []string{"Software"}}
	assert.Equal(t, 1.0, industryScore(profile, &direct))

	keyword := models.FundingProgram{EligibleIndustries: []string{"ai"}}
	assert.Equal(t, 0.9, industryScore(profile, &keyword))

	focus := models.FundingProgram{EligibleIndustries: []string{"forestry"}, FocusAreas: []string{"saas platforms"}}
	assert.Equal(t, 0.7, industryScore(profile, &focus))

	mismatch := models.FundingProgram{EligibleIndustries: []string{"forestry"}}
	assert.Equal(t, floorScore, industryScore(profile, &mismatch))
}

func TestGeographyScoreLevels(t *testing.T) {
	profile := softwareProfile()

	nationwide := models.FundingProgram{EligibleRegions: []string{"Finland"}}
	assert.Equal(t, 1.0, geographyScore(profile, &nationwide))

	match := models.FundingProgram{EligibleRegions: []string{"uusimaa", "pirkanmaa"}}
	assert.Equal(t, 1.0, geographyScore(profile, &match))

	mismatch := models.FundingProgram{EligibleRegions: []string{"lappi"}}
	assert.Equal(t, 0.4, geographyScore(profile, &mismatch))

	unknownRegion := softwareProfile()
	unknownRegion.Region = ""
	assert.Equal(t, neutralScore, geographyScore(unknownRegion, &mismatch))
}

func TestSizeScoreLevels(t *testing.T) {
	profile := softwareProfile() // seed, 8 employees

	open := models.FundingProgram{}
	assert.Equal(t, 1.0, sizeScore(profile, &open))

	stageMatch := models.FundingProgram{TargetStages: []models.GrowthStage{models.GrowthStageSeed}}
	assert.Equal(t, 1.0, sizeScore(profile, &stageMatch))

	// Stage mismatch, but 8 employees sits inside the pre-seed band.
	bandFit := models.FundingProgram{TargetStages: []models.GrowthStage{models.GrowthStagePreSeed}}
	assert.Equal(t, 0.7, sizeScore(profile, &bandFit))

	// Stage and band both miss.
	far := models.FundingProgram{TargetStages: []models.GrowthStage{models.GrowthStageScaleUp}}
	score := sizeScore(profile, &far)
	assert.Greater(t, score, floorScore-1e-9)
	assert.Less(t, score, 0.7)
}

func TestWarningsAndNextSteps(t *testing.T) {
	e := newTestEngine(t, config.MatchingConfig{})
	program := grantProgram()
	program.FundingType = models.FundingTypeLoan
	program.ApplicationDeadline = "2026-02-01"
	program.MaxFunding = 200000

	recs := e.Match(softwareProfile(), []models.FundingProgram{program})
	require.Len(t, recs, 1)

	warnings := recs[0].Warnings
	assert.Contains(t, warnings, "Application deadline 2026-02-01 has passed")
	assert.Contains(t, warnings, "Requested amount exceeds the program maximum of 200000 EUR")
	assert.Contains(t, warnings, "Loan financing requires repayment ability")

	steps := recs[0].NextSteps
	assert.Contains(t, steps, "Review program details at https://example.fi/apply")
	assert.Contains(t, steps, "Prepare financial statements and a repayment plan")
}
