package utils

import (
	"errors"
	"fmt"

	"github.com/antoniodjones/pours-consumer/models"
)

var ErrImplausibleReading = errors.New("reading outside physiological range")

// ValidateReading checks every present vital against physiologically
// plausible ranges. Absent fields pass; a reading with no vitals at all
// is rejected.
func ValidateReading(r *models.BiometricReading) error {
	hasAny := false

	if r.HeartRate != nil {
		hasAny = true
		if *r.HeartRate < 20 || *r.HeartRate > 250 {
			return fmt.Errorf("%w: heart rate %d bpm", ErrImplausibleReading, *r.HeartRate)
		}
	}
	if r.OxygenSaturation != nil {
		hasAny = true
		if *r.OxygenSaturation < 0 || *r.OxygenSaturation > 100 {
			return fmt.Errorf("%w: SpO2 %.1f%%", ErrImplausibleReading, *r.OxygenSaturation)
		}
	}
	if r.TemperatureCelsius != nil {
		hasAny = true
		if *r.TemperatureCelsius < 30 || *r.TemperatureCelsius > 45 {
			return fmt.Errorf("%w: temperature %.1f°C", ErrImplausibleReading, *r.TemperatureCelsius)
		}
	}
	if r.BloodPressureSystolic != nil {
		hasAny = true
		if *r.BloodPressureSystolic < 50 || *r.BloodPressureSystolic > 260 {
			return fmt.Errorf("%w: systolic %d mmHg", ErrImplausibleReading, *r.BloodPressureSystolic)
		}
	}
	if r.BloodPressureDiastolic != nil {
		hasAny = true
		if *r.BloodPressureDiastolic < 30 || *r.BloodPressureDiastolic > 200 {
			return fmt.Errorf("%w: diastolic %d mmHg", ErrImplausibleReading, *r.BloodPressureDiastolic)
		}
	}
	if r.BloodPressureSystolic != nil && r.BloodPressureDiastolic != nil &&
		*r.BloodPressureDiastolic >= *r.BloodPressureSystolic {
		return fmt.Errorf("%w: diastolic not below systolic", ErrImplausibleReading)
	}

	if !hasAny {
		return fmt.Errorf("%w: no vitals supplied", ErrImplausibleReading)
	}
	return nil
}
