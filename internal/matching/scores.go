package matching

import (
	"math"
	"time"

	"funding-advisor/internal/models"
)

// Factor weights. Fixed by product decision; they must sum to 1.0 so the
// total stays in [0,1].
const (
	weightIndustry  = 0.30
	weightGeography = 0.25
	weightSize      = 0.20
	weightFunding   = 0.15
	weightDeadline  = 0.10
)

const (
	// neutralScore is used when a factor cannot be evaluated either way.
	neutralScore = 0.8
	// floorScore keeps clear mismatches visible instead of zeroing them out.
	floorScore = 0.2
)

// industryScore compares the company's industry and keywords against the
// program's eligible industries and focus areas.
func industryScore(profile *models.CompanyProfile, program *models.FundingProgram) float64 {
	if len(program.EligibleIndustries) == 0 {
		// Industry-agnostic program.
		return 1.0
	}

	industry := normalize(profile.Industry)
	for _, eligible := range program.EligibleIndustries {
		if termsMatch(industry, normalize(eligible)) {
			return 1.0
		}
	}

	for _, keyword := range profile.IndustryKeywords {
		kw := normalize(keyword)
		for _, eligible := range program.EligibleIndustries {
			if termsMatch(kw, normalize(eligible)) {
				return 0.9
			}
		}
	}

	for _, keyword := range append([]string{profile.Industry}, profile.IndustryKeywords...) {
		kw := normalize(keyword)
		for _, focus := range program.FocusAreas {
			if termsMatch(kw, normalize(focus)) {
				return 0.7
			}
		}
	}

	return floorScore
}

// nationwideTerms mark programs open to companies anywhere in Finland or
// the wider EU regardless of the listed regions.
var nationwideTerms = []string{"finland", "suomi", "nationwide", "eu", "europe", "european union", "nordic"}

// geographyScore compares the company's region against the program's
// eligible regions. Programs without regional restrictions always fit.
func geographyScore(profile *models.CompanyProfile, program *models.FundingProgram) float64 {
	if len(program.EligibleRegions) == 0 {
		return 1.0
	}

	region := normalize(profile.Region)
	for _, eligible := range program.EligibleRegions {
		e := normalize(eligible)
		if region != "" && termsMatch(region, e) {
			return 1.0
		}
		for _, term := range nationwideTerms {
			if e == term {
				return 1.0
			}
		}
	}

	if region == "" {
		// Regionally restricted program, unknown company region.
		return neutralScore
	}
	return 0.4
}

// stageBand is the employee-count range typical for a growth stage. The
// upper bound of scale-up is open.
type stageBand struct {
	min, max int
	open     bool
}

var stageBands = map[models.GrowthStage]stageBand{
	models.GrowthStagePreSeed: {min: 0, max: 10},
	models.GrowthStageSeed:    {min: 0, max: 10},
	models.GrowthStageGrowth:  {min: 10, max: 250},
	models.GrowthStageScaleUp: {min: 50, open: true},
}

// sizeScore compares the company's stage and headcount against the
// program's target stages.
func sizeScore(profile *models.CompanyProfile, program *models.FundingProgram) float64 {
	if len(program.TargetStages) == 0 {
		return 1.0
	}

	for _, stage := range program.TargetStages {
		if stage == profile.GrowthStage {
			return 1.0
		}
	}

	// Stage mismatch. Headcount inside a target band still counts for
	// something: stage labels are self-reported and fuzzy at the edges.
	best := 0.0
	for _, stage := range program.TargetStages {
		band, ok := stageBands[stage]
		if !ok {
			continue
		}
		if score := bandScore(band, profile.EmployeeCount); score > best {
			best = score
		}
	}
	if best < floorScore {
		best = floorScore
	}
	return best
}

func bandScore(band stageBand, count int) float64 {
	if count >= band.min && (band.open || count <= band.max) {
		return 0.7
	}

	width := float64(band.max - band.min)
	if band.open || width < 1 {
		width = 50
	}
	var distance float64
	if count < band.min {
		distance = float64(band.min - count)
	} else {
		distance = float64(count - band.max)
	}
	return floorScore + 0.5*math.Exp(-2*distance/width)
}

// fundingScore compares the requested amount against the program's range.
// Below the minimum the score rises steeply as the need approaches it;
// above the maximum it decays with the relative overshoot.
func fundingScore(profile *models.CompanyProfile, program *models.FundingProgram) float64 {
	need := float64(profile.FundingNeedAmount)
	minF := float64(program.MinFunding)
	maxF := float64(program.MaxFunding)

	if minF <= 0 && maxF <= 0 {
		return neutralScore
	}
	if need <= 0 {
		return neutralScore
	}

	if minF > 0 && need < minF {
		ratio := need / minF
		return floorScore + 0.8*ratio*ratio*ratio
	}
	if maxF > 0 && need > maxF {
		return floorScore + 0.8*math.Exp(-(need-maxF)/maxF)
	}
	return 1.0
}

// deadlineWindow is the horizon inside which an approaching deadline starts
// reducing the score.
const deadlineWindow = 60 * 24 * time.Hour

// deadlineScore favors programs with comfortable application windows.
// Always-open programs score full; expired ones are nearly zeroed but kept
// visible so the caller can see what was just missed.
func deadlineScore(program *models.FundingProgram, now time.Time) float64 {
	deadline, ok := program.DeadlineTime()
	if !ok {
		return 1.0
	}

	remaining := deadline.Sub(now.Truncate(24 * time.Hour))
	if remaining < 0 {
		return 0.05
	}
	if remaining >= deadlineWindow {
		return 1.0
	}
	return 0.3 + 0.7*(remaining.Hours()/deadlineWindow.Hours())
}

func totalScore(s models.MatchScore) float64 {
	return weightIndustry*s.Industry +
		weightGeography*s.Geography +
		weightSize*s.Size +
		weightFunding*s.Funding +
		weightDeadline*s.Deadline
}
