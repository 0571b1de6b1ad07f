package utils

import (
	"testing"

	"github.com/antoniodjones/pours-consumer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maleProfile() *models.BiometricProfile {
	return &models.BiometricProfile{WeightKg: 70, HeightCm: 175, Gender: "male"}
}

func TestEstimateBAC_ZeroAlcohol(t *testing.T) {
	bac, err := EstimateBAC(maleProfile(), 0, 0, DefaultEliminationRate)
	require.NoError(t, err)
	assert.Zero(t, bac)

	// elapsed time alone never produces a negative estimate
	bac, err = EstimateBAC(maleProfile(), 0, 5, DefaultEliminationRate)
	require.NoError(t, err)
	assert.Zero(t, bac)
}

func TestEstimateBAC_SingleBeerScenario(t *testing.T) {
	// 350ml at 5% ABV ≈ 13.8g of alcohol for a 70kg male at T0
	grams := AlcoholGrams(350 * 0.05)
	assert.InDelta(t, 13.81, grams, 0.01)

	bac, err := EstimateBAC(maleProfile(), grams, 0, DefaultEliminationRate)
	require.NoError(t, err)
	assert.InDelta(t, 0.029, bac, 0.005)
	assert.Less(t, bac, 0.08)
}

func TestEstimateBAC_HeavyConsumption(t *testing.T) {
	bac, err := EstimateBAC(maleProfile(), 80, 0, DefaultEliminationRate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bac, 0.15)
}

func TestEstimateBAC_MonotonicInAlcohol(t *testing.T) {
	prev := -1.0
	for grams := 0.0; grams <= 100; grams += 10 {
		bac, err := EstimateBAC(maleProfile(), grams, 1, DefaultEliminationRate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bac, prev)
		prev = bac
	}
}

func TestEstimateBAC_DecaysOverTime(t *testing.T) {
	prev := 10.0
	for hours := 0.0; hours <= 6; hours++ {
		bac, err := EstimateBAC(maleProfile(), 40, hours, DefaultEliminationRate)
		require.NoError(t, err)
		assert.LessOrEqual(t, bac, prev)
		prev = bac
	}

	// fully metabolized, clamped at zero
	bac, err := EstimateBAC(maleProfile(), 13.8, 24, DefaultEliminationRate)
	require.NoError(t, err)
	assert.Zero(t, bac)
}

func TestEstimateBAC_GenderRatios(t *testing.T) {
	male := &models.BiometricProfile{WeightKg: 70, HeightCm: 170, Gender: "male"}
	female := &models.BiometricProfile{WeightKg: 70, HeightCm: 170, Gender: "female"}
	other := &models.BiometricProfile{WeightKg: 70, HeightCm: 170, Gender: "other"}

	mb, err := EstimateBAC(male, 40, 0, DefaultEliminationRate)
	require.NoError(t, err)
	fb, err := EstimateBAC(female, 40, 0, DefaultEliminationRate)
	require.NoError(t, err)
	ob, err := EstimateBAC(other, 40, 0, DefaultEliminationRate)
	require.NoError(t, err)

	// smaller distribution ratio means higher BAC for the same intake
	assert.Greater(t, fb, mb)
	assert.Greater(t, fb, ob)
	assert.Greater(t, ob, mb)
}

func TestEstimateBAC_InvalidInputs(t *testing.T) {
	_, err := EstimateBAC(nil, 10, 1, DefaultEliminationRate)
	require.ErrorIs(t, err, ErrInvalidBiometrics)

	_, err = EstimateBAC(&models.BiometricProfile{WeightKg: 0, Gender: "male"}, 10, 1, DefaultEliminationRate)
	require.ErrorIs(t, err, ErrInvalidBiometrics)

	_, err = EstimateBAC(maleProfile(), 10, -0.5, DefaultEliminationRate)
	require.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestEstimateBAC_Deterministic(t *testing.T) {
	a, err := EstimateBAC(maleProfile(), 42.5, 1.75, DefaultEliminationRate)
	require.NoError(t, err)
	b, err := EstimateBAC(maleProfile(), 42.5, 1.75, DefaultEliminationRate)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
