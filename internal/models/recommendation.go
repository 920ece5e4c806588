package models

// MatchScore carries the five weighted sub-scores for one
// (CompanyProfile, FundingProgram) pair. All values are in [0,1] and the
// total is the fixed-weight sum. Recomputed on every request, never persisted.
type MatchScore struct {
	Total     float64 `json:"total_score"`
	Industry  float64 `json:"industry_score"`
	Geography float64 `json:"geography_score"`
	Size      float64 `json:"size_score"`
	Funding   float64 `json:"funding_score"`
	Deadline  float64 `json:"deadline_score"`
}

// Recommendation is one ranked, explained match produced fresh per request.
type Recommendation struct {
	Program       FundingProgram `json:"program"`
	Score         MatchScore     `json:"match_score"`
	Justification []string       `json:"justification"`
	Warnings      []string       `json:"warnings,omitempty"`
	NextSteps     []string       `json:"next_steps,omitempty"`
}

// SourceMode records how one source's programs were served.
type SourceMode string

const (
	SourceModeLive     SourceMode = "live"
	SourceModeCache    SourceMode = "cache"
	SourceModeFallback SourceMode = "fallback"
)

// SourceStatus reports the per-source outcome of one discovery cycle.
type SourceStatus struct {
	Source   Source     `json:"source"`
	Mode     SourceMode `json:"mode"`
	Programs int        `json:"programs"`
	Error    string     `json:"error,omitempty"`
}

// DiscoveryReport is the aggregated result of one discovery cycle: candidate
// programs concatenated in source order plus per-source observability.
type DiscoveryReport struct {
	Programs []FundingProgram `json:"programs"`
	Sources  []SourceStatus   `json:"sources"`
}
