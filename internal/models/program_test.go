package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineTime(t *testing.T) {
	open := FundingProgram{}
	_, ok := open.DeadlineTime()
	assert.False(t, ok, "empty deadline means always open")

	dated := FundingProgram{ApplicationDeadline: "2026-03-31"}
	deadline, ok := dated.DeadlineTime()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), deadline)

	garbage := FundingProgram{ApplicationDeadline: "31.3.2026"}
	_, ok = garbage.DeadlineTime()
	assert.False(t, ok)
}

func TestGrowthStageValid(t *testing.T) {
	for _, stage := range []GrowthStage{GrowthStagePreSeed, GrowthStageSeed, GrowthStageGrowth, GrowthStageScaleUp} {
		assert.True(t, stage.Valid())
	}
	assert.False(t, GrowthStage("unicorn").Valid())
	assert.False(t, GrowthStage("").Valid())
}

func TestFundingPurposeValid(t *testing.T) {
	assert.True(t, FundingPurposeRDI.Valid())
	assert.True(t, FundingPurposeWorkingCapital.Valid())
	assert.False(t, FundingPurpose("yachts").Valid())
}
