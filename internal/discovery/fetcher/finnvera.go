package fetcher

import (
	"strings"

	"funding-advisor/internal/models"
)

// Finnvera offers loans and guarantees, never direct grants. Guarantee
// markers win over loan markers because guarantee product pages routinely
// mention the underlying bank loan.
func buildFinnveraProgram(name, description string) models.FundingProgram {
	text := strings.ToLower(name + " " + description)

	fundingType := models.FundingTypeLoan
	if containsAny(text, "guarantee", "takaus", "takuu") {
		fundingType = models.FundingTypeGuarantee
	}

	var focus []string
	if containsAny(text, "export", "vienti") {
		focus = append(focus, "export")
	}
	if containsAny(text, "growth", "kasvu") {
		focus = append(focus, "growth")
	}
	if containsAny(text, "working capital", "käyttöpääoma") {
		focus = append(focus, "working capital")
	}

	requirements := []string{"Repayment ability"}
	if fundingType == models.FundingTypeGuarantee {
		requirements = []string{"Underlying financing from a bank or other financier"}
	}

	return models.FundingProgram{
		ProgramName:  name,
		Description:  description,
		FundingType:  fundingType,
		TargetStages: classifyStages(text),
		FocusAreas:   focus,
		Requirements: requirements,
	}
}
