package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSEToSD(t *testing.T) {
	sd, err := SEToSD(2, 25)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, sd, 1e-9)

	_, err = SEToSD(2, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = SEToSD(-1, 25)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCIToMeanSD(t *testing.T) {
	// 95% CI [8, 12] with n=100: mean 10, SD = 10*4/(2*1.96).
	res, err := CIToMeanSD(8, 12, 100, 95)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Mean, 1e-9)
	assert.InDelta(t, 10.2040816, res.SD, 1e-6)

	_, err = CIToMeanSD(12, 8, 100, 95)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = CIToMeanSD(8, 12, 100, 80)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPooledSD(t *testing.T) {
	// Equal groups, equal SDs pool to the same SD.
	sd, err := PooledSD(10, 2, 10, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sd, 1e-9)

	sd, err = PooledSD(5, 1, 7, 3)
	require.NoError(t, err)
	expected := math.Sqrt((4*1 + 6*9) / 10.0)
	assert.InDelta(t, expected, sd, 1e-9)

	_, err = PooledSD(1, 1, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSMD(t *testing.T) {
	in := SMDInput{
		Mean1: 12, SD1: 2, N1: 20,
		Mean2: 10, SD2: 2, N2: 20,
		Correction: true,
	}
	res, err := SMD(in)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.CohensD, 1e-9)
	// J = 1 - 3/(4*38-1) = 1 - 3/151
	assert.InDelta(t, 1-3.0/151, res.J, 1e-9)
	assert.InDelta(t, res.CohensD*res.J, res.HedgesG, 1e-9)
	assert.InDelta(t, 2.0, res.PooledSD, 1e-9)

	g := res.HedgesG
	expectedSE := math.Sqrt(40.0/400 + g*g/80)
	assert.InDelta(t, expectedSE, res.SE, 1e-9)
	assert.InDelta(t, g-1.96*res.SE, res.CILower, 1e-9)
	assert.InDelta(t, g+1.96*res.SE, res.CIUpper, 1e-9)
	assert.Greater(t, res.Z, 0.0)
	assert.Less(t, res.P, 0.05)

	// Without the correction g equals d.
	in.Correction = false
	res, err = SMD(in)
	require.NoError(t, err)
	assert.Equal(t, res.CohensD, res.HedgesG)
}

func TestSMDZeroPooledSD(t *testing.T) {
	_, err := SMD(SMDInput{Mean1: 1, SD1: 0, N1: 10, Mean2: 2, SD2: 0, N2: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBinaryOutcomes(t *testing.T) {
	// Classic 2x2: 10/20 vs 5/20.
	res, err := BinaryOutcomes(BinaryInput{Events1: 10, Total1: 20, Events2: 5, Total2: 20})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.P1, 1e-9)
	assert.InDelta(t, 0.25, res.P2, 1e-9)
	assert.InDelta(t, 3.0, res.OddsRatio.Estimate, 1e-9)   // (10*15)/(10*5)
	assert.InDelta(t, 2.0, res.RiskRatio.Estimate, 1e-9)   // 0.5/0.25
	assert.InDelta(t, 0.25, res.RiskDifference.Estimate, 1e-9)
	assert.False(t, res.CorrectionApplied)

	seLogOR := math.Sqrt(1/10.0 + 1/10.0 + 1/5.0 + 1/15.0)
	assert.InDelta(t, seLogOR, res.OddsRatio.SE, 1e-9)
	assert.InDelta(t, math.Exp(math.Log(3)-1.96*seLogOR), res.OddsRatio.CILower, 1e-9)
	assert.Less(t, res.RiskDifference.CILower, res.RiskDifference.Estimate)
	assert.Greater(t, res.RiskDifference.CIUpper, res.RiskDifference.Estimate)
}

func TestBinaryOutcomesHaldaneCorrection(t *testing.T) {
	in := BinaryInput{Events1: 0, Total1: 10, Events2: 5, Total2: 10}

	_, err := BinaryOutcomes(in)
	assert.ErrorIs(t, err, ErrInvalidInput, "zero cell without correction is rejected")

	in.Haldane = true
	res, err := BinaryOutcomes(in)
	require.NoError(t, err)
	assert.True(t, res.CorrectionApplied)
	assert.Greater(t, res.OddsRatio.Estimate, 0.0)
}

func TestBinaryOutcomesValidation(t *testing.T) {
	_, err := BinaryOutcomes(BinaryInput{Events1: 5, Total1: 0, Events2: 1, Total2: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = BinaryOutcomes(BinaryInput{Events1: 15, Total1: 10, Events2: 1, Total2: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
