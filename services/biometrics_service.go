package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/antoniodjones/pours-consumer/models"
	"github.com/antoniodjones/pours-consumer/utils"

	"gorm.io/gorm"
)

type BiometricsService struct {
	db *gorm.DB
}

func NewBiometricsService(db *gorm.DB) *BiometricsService {
	return &BiometricsService{db: db}
}

type ProfileInput struct {
	WeightKg          float64  `json:"weight_kg"`
	HeightCm          float64  `json:"height_cm"`
	Gender            string   `json:"gender"`
	BodyFatPercentage *float64 `json:"body_fat_percentage"`
}

func validGender(g string) bool {
	switch g {
	case "male", "female", "other":
		return true
	}
	return false
}

// UpsertProfile creates or overwrites the user's single profile row.
// Edits never rewrite past BAC snapshots; only future recomputes see the
// new values.
func (s *BiometricsService) UpsertProfile(userID uint, in ProfileInput) (*models.BiometricProfile, error) {
	if in.WeightKg < 20 || in.WeightKg > 400 {
		return nil, fmt.Errorf("%w: weight %.1f kg", utils.ErrInvalidBiometrics, in.WeightKg)
	}
	if in.HeightCm < 50 || in.HeightCm > 250 {
		return nil, fmt.Errorf("%w: height %.1f cm", utils.ErrInvalidBiometrics, in.HeightCm)
	}
	if !validGender(in.Gender) {
		return nil, fmt.Errorf("%w: gender %q", utils.ErrInvalidBiometrics, in.Gender)
	}
	if in.BodyFatPercentage != nil && (*in.BodyFatPercentage < 0 || *in.BodyFatPercentage > 100) {
		return nil, fmt.Errorf("%w: body fat %.1f%%", utils.ErrInvalidBiometrics, *in.BodyFatPercentage)
	}

	var profile models.BiometricProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.BiometricProfile{
			UserID:            userID,
			WeightKg:          in.WeightKg,
			HeightCm:          in.HeightCm,
			Gender:            in.Gender,
			BodyFatPercentage: in.BodyFatPercentage,
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}

	profile.WeightKg = in.WeightKg
	profile.HeightCm = in.HeightCm
	profile.Gender = in.Gender
	profile.BodyFatPercentage = in.BodyFatPercentage
	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *BiometricsService) Profile(userID uint) (*models.BiometricProfile, error) {
	var profile models.BiometricProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type ReadingInput struct {
	SessionID              *uint      `json:"session_id"`
	RecordedAt             *time.Time `json:"recorded_at"`
	HeartRate              *int       `json:"heart_rate"`
	BloodPressureSystolic  *int       `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int       `json:"blood_pressure_diastolic"`
	TemperatureCelsius     *float64   `json:"temperature_celsius"`
	OxygenSaturation       *float64   `json:"oxygen_saturation"`
	Source                 string     `json:"source"`
}

// RecordReading appends vitals telemetry. Readings are observational only:
// they never change session state or the BAC estimate.
func (s *BiometricsService) RecordReading(userID uint, in ReadingInput) (*models.BiometricReading, error) {
	recordedAt := time.Now()
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	source := in.Source
	if source == "" {
		source = "manual"
	}

	reading := &models.BiometricReading{
		UserID:                 userID,
		SessionID:              in.SessionID,
		RecordedAt:             recordedAt,
		HeartRate:              in.HeartRate,
		BloodPressureSystolic:  in.BloodPressureSystolic,
		BloodPressureDiastolic: in.BloodPressureDiastolic,
		TemperatureCelsius:     in.TemperatureCelsius,
		OxygenSaturation:       in.OxygenSaturation,
		Source:                 source,
	}
	if err := utils.ValidateReading(reading); err != nil {
		return nil, err
	}

	if in.SessionID != nil {
		var session models.DrinkingSession
		err := s.db.Where("id = ? AND user_id = ?", *in.SessionID, userID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(reading).Error; err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *BiometricsService) Readings(userID uint, sessionID *uint) ([]models.BiometricReading, error) {
	q := s.db.Where("user_id = ?", userID)
	if sessionID != nil {
		q = q.Where("session_id = ?", *sessionID)
	}
	var readings []models.BiometricReading
	err := q.Order("recorded_at desc").Find(&readings).Error
	return readings, err
}
