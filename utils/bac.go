package utils

import (
	"errors"
	"math"
	"strings"

	"github.com/antoniodjones/pours-consumer/models"
)

// Widmark distribution ratios: the fraction of body mass alcohol
// distributes into, by gender. The classical model defines no constant for
// other genders; users who report "other" (or an unrecognized value) get
// the midpoint of the male and female ratios until a body-composition
// model replaces the fixed constants.
const (
	widmarkRatioMale   = 0.68
	widmarkRatioFemale = 0.55
	widmarkRatioOther  = 0.615
)

const (
	// EthanolDensityGramsPerMl converts pure-alcohol volume to mass.
	EthanolDensityGramsPerMl = 0.789

	// DefaultEliminationRate is the hourly BAC drop from metabolism,
	// in the conventional g/100mL unit.
	DefaultEliminationRate = 0.015
)

var (
	ErrInvalidBiometrics = errors.New("biometrics missing or out of plausible range")
	ErrInvalidTimeRange  = errors.New("elapsed time must not be negative")
)

// AlcoholGrams converts a volume of pure alcohol in millilitres to grams.
func AlcoholGrams(alcoholMl float64) float64 {
	return alcoholMl * EthanolDensityGramsPerMl
}

func widmarkRatio(gender string) float64 {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		return widmarkRatioMale
	case "female":
		return widmarkRatioFemale
	default:
		return widmarkRatioOther
	}
}

// EstimateBAC returns the estimated blood alcohol content in grams per
// 100mL, clamped at zero. Peak BAC follows Widmark
// (grams / (weight_kg * 1000 * r) * 100); metabolism then removes
// eliminationRate per hour elapsed since the session started.
//
// The function is pure: identical inputs always produce identical output.
func EstimateBAC(profile *models.BiometricProfile, alcoholGrams, hoursElapsed, eliminationRate float64) (float64, error) {
	if profile == nil || profile.WeightKg <= 0 {
		return 0, ErrInvalidBiometrics
	}
	if profile.WeightKg < 20 || profile.WeightKg > 400 {
		return 0, ErrInvalidBiometrics
	}
	if hoursElapsed < 0 {
		return 0, ErrInvalidTimeRange
	}

	r := widmarkRatio(profile.Gender)
	peak := alcoholGrams / (profile.WeightKg * 1000 * r) * 100
	return math.Max(0, peak-eliminationRate*hoursElapsed), nil
}
