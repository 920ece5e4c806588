package fetcher

import (
	"strings"

	"funding-advisor/internal/models"
)

// ELY Centre aid is regional and almost exclusively grant-based. Regions are
// left empty: the listing page does not state which centres run each scheme,
// and empty means nationwide for matching purposes.
func buildELYProgram(name, description string) models.FundingProgram {
	text := strings.ToLower(name + " " + description)

	fundingType := models.FundingTypeGrant
	if containsAny(text, "loan", "laina") {
		fundingType = models.FundingTypeLoan
	}

	var focus []string
	if containsAny(text, "invest", "investointi") {
		focus = append(focus, "investments")
	}
	if containsAny(text, "develop", "kehittämis", "kehitys") {
		focus = append(focus, "business development")
	}
	if containsAny(text, "energy", "energia", "environment", "ympäristö") {
		focus = append(focus, "energy and environment")
	}
	if containsAny(text, "international", "kansainvälis") {
		focus = append(focus, "internationalization")
	}

	return models.FundingProgram{
		ProgramName:        name,
		Description:        description,
		FundingType:        fundingType,
		EligibleIndustries: classifyIndustries(text),
		TargetStages:       classifyStages(text),
		FocusAreas:         focus,
	}
}
