package fetcher

import (
	"strings"

	"funding-advisor/internal/models"
)

// industryTerms maps text markers on Business Finland pages to the industry
// vocabulary the matching engine compares against.
var industryTerms = map[string][]string{
	"technology": {"digital", "software", "ict", "ai", "artificial intelligence", "data"},
	"biotech":    {"bio", "life science", "pharma"},
	"health":     {"health", "terveys", "wellbeing"},
	"cleantech":  {"energy", "climate", "clean", "sustainab", "circular"},
	"manufacturing": {
		"manufactur", "industrial", "factory", "teollisuus",
	},
}

func buildBusinessFinlandProgram(name, description string) models.FundingProgram {
	text := strings.ToLower(name + " " + description)

	fundingType := models.FundingTypeGrant
	if containsAny(text, "loan", "laina") {
		fundingType = models.FundingTypeLoan
	}

	return models.FundingProgram{
		ProgramName:        name,
		Description:        description,
		FundingType:        fundingType,
		EligibleIndustries: classifyIndustries(text),
		TargetStages:       classifyStages(text),
		FocusAreas:         classifyFocusAreas(text),
	}
}

func classifyIndustries(text string) []string {
	var out []string
	for _, industry := range []string{"technology", "biotech", "health", "cleantech", "manufacturing"} {
		if containsAny(text, industryTerms[industry]...) {
			out = append(out, industry)
		}
	}
	return out
}

func classifyStages(text string) []models.GrowthStage {
	var out []models.GrowthStage
	if containsAny(text, "startup", "start-up", "early stage", "alkava") {
		out = append(out, models.GrowthStagePreSeed, models.GrowthStageSeed)
	}
	if containsAny(text, "growth", "kasvu", "scale", "midcap") {
		out = append(out, models.GrowthStageGrowth, models.GrowthStageScaleUp)
	}
	return out
}

func classifyFocusAreas(text string) []string {
	var out []string
	if containsAny(text, "research", "tutkimus", "r&d", "development") {
		out = append(out, "research and development")
	}
	if containsAny(text, "international", "export", "kansainvälis", "vienti") {
		out = append(out, "internationalization")
	}
	if containsAny(text, "innovation", "innovaatio") {
		out = append(out, "innovation")
	}
	return out
}
