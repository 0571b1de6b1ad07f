package config

import (
	"os"
	"strconv"
	"time"
)

// MonitorConfig carries the engine tunables. All BAC values are in the
// conventional g/100mL unit.
type MonitorConfig struct {
	EliminationRate float64 // hourly BAC drop from metabolism
	LegalLimitBAC   float64 // orders are blocked at or above this
	CautionBAC      float64 // caution/warning band starts here
	DangerBAC       float64
	EmergencyBAC    float64
	RapidRiseDelta  float64 // single-update BAC jump treated as a rapid rise
	SoftDrinkLimit  int     // per-session drink count for limit_reached
	SoftBACLimit    float64 // per-session BAC soft limit for limit_reached
	IdleTimeout     time.Duration
	SweepInterval   time.Duration
}

func LoadMonitorConfig() MonitorConfig {
	return MonitorConfig{
		EliminationRate: envFloat("BAC_ELIMINATION_RATE", 0.015),
		LegalLimitBAC:   envFloat("BAC_LEGAL_LIMIT", 0.08),
		CautionBAC:      envFloat("BAC_CAUTION_THRESHOLD", 0.03),
		DangerBAC:       envFloat("BAC_DANGER_THRESHOLD", 0.08),
		EmergencyBAC:    envFloat("BAC_EMERGENCY_THRESHOLD", 0.15),
		RapidRiseDelta:  envFloat("BAC_RAPID_RISE_DELTA", 0.02),
		SoftDrinkLimit:  envInt("SESSION_SOFT_DRINK_LIMIT", 5),
		SoftBACLimit:    envFloat("SESSION_SOFT_BAC_LIMIT", 0.06),
		IdleTimeout:     envDuration("SESSION_IDLE_TIMEOUT", 6*time.Hour),
		SweepInterval:   envDuration("SESSION_SWEEP_INTERVAL", 15*time.Minute),
	}
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
