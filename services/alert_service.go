package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/antoniodjones/pours-consumer/config"
	"github.com/antoniodjones/pours-consumer/models"
	"github.com/antoniodjones/pours-consumer/utils"

	"gorm.io/gorm"
)

// AlertService evaluates BAC thresholds after each recompute and fans the
// resulting alerts out to the DB, the realtime hub, push endpoints and,
// for emergencies, the duty-contact mailbox.
type AlertService struct {
	db     *gorm.DB
	cfg    config.MonitorConfig
	hub    *RealtimeHub
	push   *PushService
	mailTo string // duty contact for emergency alerts, empty disables mail
}

func NewAlertService(db *gorm.DB, cfg config.MonitorConfig, hub *RealtimeHub, push *PushService) *AlertService {
	return &AlertService{
		db:     db,
		cfg:    cfg,
		hub:    hub,
		push:   push,
		mailTo: os.Getenv("ALERT_DUTY_EMAIL"),
	}
}

// levelRank places a BAC severity band on the ladder. caution and warning
// share a rank: they are the same band, distinguished only by slope.
func levelRank(level string) int {
	switch level {
	case models.AlertCaution, models.AlertWarning:
		return 1
	case models.AlertDanger:
		return 2
	case models.AlertEmergency:
		return 3
	default:
		return 0
	}
}

func levelName(rank int, rapid bool) string {
	switch rank {
	case 1:
		if rapid {
			return models.AlertWarning
		}
		return models.AlertCaution
	case 2:
		return models.AlertDanger
	case 3:
		return models.AlertEmergency
	}
	return ""
}

// bacLevel returns the severity band for a BAC value.
func bacLevel(cfg config.MonitorConfig, bac float64) string {
	switch {
	case bac >= cfg.EmergencyBAC:
		return models.AlertEmergency
	case bac >= cfg.DangerBAC:
		return models.AlertDanger
	case bac >= cfg.CautionBAC:
		return models.AlertCaution
	default:
		return ""
	}
}

// pendingLevels lists every band crossed between the last notified level
// and the new one, lowest first, so a single large jump still records each
// crossing exactly once. A plateau yields nothing; a drop yields nothing
// but re-arms lower bands for the next rise.
func pendingLevels(lastLevel, newLevel string, rapid bool) []string {
	var out []string
	for r := levelRank(lastLevel) + 1; r <= levelRank(newLevel); r++ {
		out = append(out, levelName(r, rapid))
	}
	return out
}

func alertMessage(cfg config.MonitorConfig, alertType string, bac float64) string {
	switch alertType {
	case models.AlertCaution:
		return fmt.Sprintf("Your estimated BAC is %.3f%%. Pace yourself and drink some water.", bac)
	case models.AlertWarning:
		return fmt.Sprintf("Your estimated BAC is rising quickly and is now %.3f%%. Slow down.", bac)
	case models.AlertLimitReached:
		return "You have reached your session limit. Further alcohol orders are discouraged."
	case models.AlertDanger:
		return fmt.Sprintf("Your estimated BAC of %.3f%% is at or above the %.3f%% legal limit. Alcohol orders are now blocked.", bac, cfg.LegalLimitBAC)
	case models.AlertEmergency:
		return fmt.Sprintf("Your estimated BAC of %.3f%% is dangerously high. Stop drinking and seek assistance.", bac)
	}
	return ""
}

// Evaluate runs the threshold check for a freshly computed BAC and creates
// the alerts it implies inside the caller's transaction. The dedup state
// (LastAlertLevel, LimitNotified) is updated on the session in memory; the
// caller persists the session row as part of the same transaction.
func (s *AlertService) Evaluate(tx *gorm.DB, session *models.DrinkingSession, newBAC, prevBAC float64) ([]models.SobrietyAlert, error) {
	rapid := newBAC-prevBAC >= s.cfg.RapidRiseDelta
	newLevel := bacLevel(s.cfg, newBAC)

	var created []models.SobrietyAlert
	for _, alertType := range pendingLevels(session.LastAlertLevel, newLevel, rapid) {
		a := models.SobrietyAlert{
			UserID:       session.UserID,
			SessionID:    session.ID,
			AlertType:    alertType,
			Message:      alertMessage(s.cfg, alertType, newBAC),
			EstimatedBAC: newBAC,
		}
		if err := tx.Create(&a).Error; err != nil {
			return nil, err
		}
		created = append(created, a)
	}
	// Record the current band even when it moved down, so a decay followed
	// by a new rise counts as a fresh crossing.
	session.LastAlertLevel = newLevel

	if !session.LimitNotified &&
		(session.TotalDrinks >= s.cfg.SoftDrinkLimit || newBAC >= s.cfg.SoftBACLimit) {
		a := models.SobrietyAlert{
			UserID:       session.UserID,
			SessionID:    session.ID,
			AlertType:    models.AlertLimitReached,
			Message:      alertMessage(s.cfg, models.AlertLimitReached, newBAC),
			EstimatedBAC: newBAC,
		}
		if err := tx.Create(&a).Error; err != nil {
			return nil, err
		}
		created = append(created, a)
		session.LimitNotified = true
	}

	return created, nil
}

// Notify fans freshly created alerts out beyond the DB. Called after the
// creating transaction commits so a rollback never leaks a notification.
func (s *AlertService) Notify(userID uint, alerts []models.SobrietyAlert) {
	for _, a := range alerts {
		if s.hub != nil {
			s.hub.Broadcast(userID, "alert.created", a)
		}
		if s.push != nil && levelRank(a.AlertType) >= levelRank(models.AlertDanger) {
			s.push.PushToUser(userID, "Sobriety alert", a.Message, map[string]string{
				"type":    a.AlertType,
				"alertId": fmt.Sprintf("%d", a.ID),
			})
		}
		if s.mailTo != "" && a.AlertType == models.AlertEmergency {
			if err := utils.SendEmergencyAlertEmail(s.mailTo, userID, a.EstimatedBAC, a.Message); err != nil {
				log.Printf("emergency alert mail failed: %v", err)
			}
		}
	}
}

// Acknowledge stamps acknowledged_at on the user's alert. Purely an audit
// action: it changes neither BAC nor session state.
func (s *AlertService) Acknowledge(userID, alertID uint, intervention string) (*models.SobrietyAlert, error) {
	var a models.SobrietyAlert
	err := s.db.Where("id = ? AND user_id = ?", alertID, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}

	if a.AcknowledgedAt == nil {
		now := time.Now()
		a.AcknowledgedAt = &now
	}
	if intervention != "" {
		a.InterventionTaken = intervention
	}
	if err := s.db.Save(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AlertService) Unacknowledged(userID uint) ([]models.SobrietyAlert, error) {
	var alerts []models.SobrietyAlert
	err := s.db.
		Where("user_id = ? AND acknowledged_at IS NULL", userID).
		Order("created_at desc").
		Find(&alerts).Error
	return alerts, err
}

func (s *AlertService) ForSession(userID, sessionID uint) ([]models.SobrietyAlert, error) {
	var alerts []models.SobrietyAlert
	err := s.db.
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at asc").
		Find(&alerts).Error
	return alerts, err
}
