package models

import "time"

// Source identifies one external origin of funding-program data.
type Source string

const (
	SourceBusinessFinland Source = "business_finland"
	SourceELY             Source = "ely"
	SourceFinnvera        Source = "finnvera"
	SourceAIDiscovery     Source = "ai_discovery"
)

// FundingType classifies the instrument a program offers.
type FundingType string

const (
	FundingTypeGrant     FundingType = "grant"
	FundingTypeLoan      FundingType = "loan"
	FundingTypeGuarantee FundingType = "guarantee"
	FundingTypeEquity    FundingType = "equity"
)

// deadlineLayout is the wire format for application deadlines.
const deadlineLayout = "2006-01-02"

// FundingProgram represents one discoverable funding offering. Immutable
// once produced; lives for one discovery cycle, or until TTL expiry when
// cached.
type FundingProgram struct {
	ProgramID   string      `json:"program_id"`
	Source      Source      `json:"source"`
	ProgramName string      `json:"program_name"`
	Description string      `json:"description"`
	FundingType FundingType `json:"funding_type"`

	// Zero means the bound is unspecified. When both are set, MinFunding <= MaxFunding.
	MinFunding int64 `json:"min_funding,omitempty"` // EUR
	MaxFunding int64 `json:"max_funding,omitempty"` // EUR

	// Empty sets mean unrestricted / nationwide / any stage.
	EligibleIndustries []string      `json:"eligible_industries,omitempty"`
	EligibleRegions    []string      `json:"eligible_regions,omitempty"`
	TargetStages       []GrowthStage `json:"target_stages,omitempty"`

	// ApplicationDeadline is a YYYY-MM-DD date; empty means always open.
	ApplicationDeadline string `json:"application_deadline,omitempty"`

	ApplicationURL string   `json:"application_url,omitempty"`
	FocusAreas     []string `json:"focus_areas,omitempty"`
	Requirements   []string `json:"requirements,omitempty"`
}

// DeadlineTime parses the application deadline. ok is false when the
// program is always open or the deadline is unparseable.
func (p *FundingProgram) DeadlineTime() (time.Time, bool) {
	if p.ApplicationDeadline == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(deadlineLayout, p.ApplicationDeadline)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
