package models

// GrowthStage classifies a company's maturity.
type GrowthStage string

const (
	GrowthStagePreSeed GrowthStage = "pre-seed"
	GrowthStageSeed    GrowthStage = "seed"
	GrowthStageGrowth  GrowthStage = "growth"
	GrowthStageScaleUp GrowthStage = "scale-up"
)

// Valid reports whether the stage is one of the known values.
func (s GrowthStage) Valid() bool {
	switch s {
	case GrowthStagePreSeed, GrowthStageSeed, GrowthStageGrowth, GrowthStageScaleUp:
		return true
	}
	return false
}

// FundingPurpose classifies what the requested funding is for.
type FundingPurpose string

const (
	FundingPurposeRDI                  FundingPurpose = "rdi"
	FundingPurposeInternationalization FundingPurpose = "internationalization"
	FundingPurposeInvestments          FundingPurpose = "investments"
	FundingPurposeEquipment            FundingPurpose = "equipment"
	FundingPurposeWorkingCapital       FundingPurpose = "working_capital"
)

// Valid reports whether the purpose is one of the known values.
func (p FundingPurpose) Valid() bool {
	switch p {
	case FundingPurposeRDI, FundingPurposeInternationalization,
		FundingPurposeInvestments, FundingPurposeEquipment, FundingPurposeWorkingCapital:
		return true
	}
	return false
}

// CompanyProfile is the immutable input to one analysis request. It arrives
// already validated and normalized from the request layer.
type CompanyProfile struct {
	CompanyName       string         `json:"company_name"`
	BusinessID        string         `json:"business_id,omitempty"`
	Industry          string         `json:"industry"`
	IndustryKeywords  []string       `json:"industry_keywords,omitempty"`
	Region            string         `json:"region,omitempty"`
	EmployeeCount     int            `json:"employee_count"`
	FundingNeedAmount int64          `json:"funding_need_amount"` // EUR
	GrowthStage       GrowthStage    `json:"growth_stage"`
	FundingPurpose    FundingPurpose `json:"funding_purpose"`
	AdditionalInfo    string         `json:"additional_info,omitempty"`

	// Filled by enrichment when the registry lookup succeeds.
	OfficialName     string `json:"official_name,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
}
