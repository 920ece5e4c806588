// Package matching ranks funding programs against a company profile with a
// deterministic five-factor weighted score. Identical inputs always produce
// identical rankings; nothing here touches the network or the cache.
package matching

import (
	"fmt"
	"sort"
	"time"

	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/models"
)

// Engine scores and ranks programs. Safe for concurrent use.
type Engine struct {
	log        logger.Logger
	maxResults int
	minScore   float64
	now        func() time.Time
}

// NewEngine creates a matching engine. maxResults 0 means unlimited.
func NewEngine(cfg config.MatchingConfig, log logger.Logger) *Engine {
	return &Engine{
		log:        log,
		maxResults: cfg.MaxResults,
		minScore:   cfg.MinScore,
		now:        time.Now,
	}
}

// Match scores every program against the profile and returns recommendations
// ordered by descending total score. Programs below the minimum score are
// dropped; ties keep the input order, which makes the ranking stable across
// runs.
func (e *Engine) Match(profile *models.CompanyProfile, programs []models.FundingProgram) []models.Recommendation {
	recommendations := make([]models.Recommendation, 0, len(programs))

	for i := range programs {
		program := &programs[i]
		score := e.score(profile, program)
		if score.Total < e.minScore {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Program:       *program,
			Score:         score,
			Justification: justify(profile, program, score),
			Warnings:      warnings(profile, program, e.now()),
			NextSteps:     nextSteps(program),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score.Total > recommendations[j].Score.Total
	})

	if e.maxResults > 0 && len(recommendations) > e.maxResults {
		recommendations = recommendations[:e.maxResults]
	}

	e.log.Debug("Matching completed", map[string]interface{}{
		"programs":        len(programs),
		"recommendations": len(recommendations),
	})
	return recommendations
}

func (e *Engine) score(profile *models.CompanyProfile, program *models.FundingProgram) models.MatchScore {
	s := models.MatchScore{
		Industry:  industryScore(profile, program),
		Geography: geographyScore(profile, program),
		Size:      sizeScore(profile, program),
		Funding:   fundingScore(profile, program),
		Deadline:  deadlineScore(program, e.now()),
	}
	s.Total = totalScore(s)
	return s
}

// justificationThreshold is the sub-score above which a factor is called out
// as a reason for the match.
const justificationThreshold = 0.8

func justify(profile *models.CompanyProfile, program *models.FundingProgram, score models.MatchScore) []string {
	var out []string
	if score.Industry >= justificationThreshold {
		if len(program.EligibleIndustries) == 0 {
			out = append(out, "Program is open to all industries")
		} else {
			out = append(out, fmt.Sprintf("Industry %q fits the program's eligible industries", profile.Industry))
		}
	}
	if score.Geography >= justificationThreshold {
		if len(program.EligibleRegions) == 0 {
			out = append(out, "Program has no regional restrictions")
		} else {
			out = append(out, "Company region is covered by the program")
		}
	}
	if score.Size >= justificationThreshold && len(program.TargetStages) > 0 {
		out = append(out, fmt.Sprintf("Program targets %s stage companies", profile.GrowthStage))
	}
	if score.Funding >= justificationThreshold && (program.MinFunding > 0 || program.MaxFunding > 0) {
		out = append(out, fmt.Sprintf("Requested %d EUR is within the program's funding range", profile.FundingNeedAmount))
	}
	if score.Deadline >= justificationThreshold && program.ApplicationDeadline != "" {
		out = append(out, "Application window leaves comfortable preparation time")
	}
	return out
}

func warnings(profile *models.CompanyProfile, program *models.FundingProgram, now time.Time) []string {
	var out []string

	if deadline, ok := program.DeadlineTime(); ok {
		if deadline.Before(now.Truncate(24 * time.Hour)) {
			out = append(out, fmt.Sprintf("Application deadline %s has passed", program.ApplicationDeadline))
		}
	}

	need := profile.FundingNeedAmount
	if program.MinFunding > 0 && need > 0 && need < program.MinFunding {
		out = append(out, fmt.Sprintf("Requested amount is below the program minimum of %d EUR", program.MinFunding))
	}
	if program.MaxFunding > 0 && need > program.MaxFunding {
		out = append(out, fmt.Sprintf("Requested amount exceeds the program maximum of %d EUR", program.MaxFunding))
	}

	switch program.FundingType {
	case models.FundingTypeLoan:
		out = append(out, "Loan financing requires repayment ability")
	case models.FundingTypeGuarantee:
		out = append(out, "Guarantees require underlying financing from a bank or other financier")
	}

	return out
}

func nextSteps(program *models.FundingProgram) []string {
	var out []string
	if program.ApplicationURL != "" {
		out = append(out, fmt.Sprintf("Review program details at %s", program.ApplicationURL))
	}
	switch program.FundingType {
	case models.FundingTypeGrant:
		out = append(out, "Prepare a project plan and cost estimate for the grant application")
	case models.FundingTypeLoan:
		out = append(out, "Prepare financial statements and a repayment plan")
	case models.FundingTypeGuarantee:
		out = append(out, "Discuss the underlying loan with your bank before applying")
	case models.FundingTypeEquity:
		out = append(out, "Prepare an investor pitch and an up-to-date cap table")
	}
	if program.ApplicationDeadline != "" {
		out = append(out, fmt.Sprintf("Note the application deadline: %s", program.ApplicationDeadline))
	}
	return out
}
