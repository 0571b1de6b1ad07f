package services

import (
	"errors"
	"log"
	"time"

	"github.com/antoniodjones/pours-consumer/config"
	"github.com/antoniodjones/pours-consumer/models"
	"github.com/antoniodjones/pours-consumer/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionService owns the drinking-session lifecycle. Every mutation runs
// inside a transaction holding a FOR UPDATE lock on the session row, so
// concurrent drink recording (two devices, a retried request) cannot lose
// updates to the totals or the BAC estimate.
type SessionService struct {
	db     *gorm.DB
	cfg    config.MonitorConfig
	alerts *AlertService
	hub    *RealtimeHub
}

func NewSessionService(db *gorm.DB, cfg config.MonitorConfig, alerts *AlertService, hub *RealtimeHub) *SessionService {
	return &SessionService{db: db, cfg: cfg, alerts: alerts, hub: hub}
}

// Start opens a monitoring session at a venue. Fails if the user already
// has an active one; a session that ended cannot be reopened.
func (s *SessionService) Start(userID uint, venueID string) (*models.DrinkingSession, error) {
	var session *models.DrinkingSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.DrinkingSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", userID, models.SessionActive).
			First(&existing).Error
		if err == nil {
			return ErrSessionAlreadyActive
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		session = &models.DrinkingSession{
			UserID:    userID,
			VenueID:   venueID,
			StartedAt: time.Now(),
			Status:    models.SessionActive,
		}
		// The partial unique index on (user_id) WHERE status='active'
		// catches the race the FOR UPDATE lookup cannot: two concurrent
		// starts both seeing no active row.
		if err := tx.Create(session).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSessionAlreadyActive
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, "session.started", session)
	}
	return session, nil
}

type DrinkInput struct {
	ProductID      string     `json:"product_id"`
	OrderID        string     `json:"order_id"`
	VolumeMl       float64    `json:"volume_ml"`
	AlcoholContent float64    `json:"alcohol_content"` // ABV fraction, 0–1
	ConsumedAt     *time.Time `json:"consumed_at"`
}

// RecordDrink atomically appends a drink to an active session, bumps the
// totals, recomputes BAC and runs the alert evaluation.
func (s *SessionService) RecordDrink(userID, sessionID uint, in DrinkInput) (*models.DrinkRecord, error) {
	if in.VolumeMl <= 0 || in.AlcoholContent < 0 || in.AlcoholContent > 1 {
		return nil, ErrInvalidDrink
	}

	var (
		session models.DrinkingSession
		record  *models.DrinkRecord
		fired   []models.SobrietyAlert
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSession(tx, userID, sessionID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}

		var profile models.BiometricProfile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		consumedAt := time.Now()
		if in.ConsumedAt != nil {
			consumedAt = *in.ConsumedAt
		}
		record = &models.DrinkRecord{
			SessionID:      session.ID,
			UserID:         userID,
			ProductID:      in.ProductID,
			OrderID:        in.OrderID,
			VolumeMl:       in.VolumeMl,
			AlcoholContent: in.AlcoholContent,
			AlcoholMl:      in.VolumeMl * in.AlcoholContent,
			ConsumedAt:     consumedAt,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		session.TotalDrinks++
		session.TotalAlcoholMl += record.AlcoholMl

		prevBAC := session.EstimatedBAC
		bac, err := s.recomputeLocked(tx, &session, &profile)
		if err != nil {
			return err
		}

		record.EstimatedBACAfter = bac
		if err := tx.Model(record).Update("estimated_bac_after", bac).Error; err != nil {
			return err
		}

		fired, err = s.alerts.Evaluate(tx, &session, bac, prevBAC)
		if err != nil {
			return err
		}
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, "session.updated", &session)
	}
	s.alerts.Notify(userID, fired)
	return record, nil
}

// Recompute re-derives the session BAC from its drink records and the
// elapsed time, persists it, and re-runs alert evaluation. With no new
// drinks the estimate only ever drifts downward.
func (s *SessionService) Recompute(userID, sessionID uint) (*models.DrinkingSession, error) {
	var (
		session models.DrinkingSession
		fired   []models.SobrietyAlert
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSession(tx, userID, sessionID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}

		var profile models.BiometricProfile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		prevBAC := session.EstimatedBAC
		bac, err := s.recomputeLocked(tx, &session, &profile)
		if err != nil {
			return err
		}

		fired, err = s.alerts.Evaluate(tx, &session, bac, prevBAC)
		if err != nil {
			return err
		}
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, "session.updated", &session)
	}
	s.alerts.Notify(userID, fired)
	return &session, nil
}

// End closes a session. Terminal: no drinks may be recorded afterwards.
func (s *SessionService) End(userID, sessionID uint) (*models.DrinkingSession, error) {
	var session models.DrinkingSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSession(tx, userID, sessionID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}

		now := time.Now()
		session.Status = models.SessionEnded
		session.EndedAt = &now
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, "session.ended", &session)
	}
	return &session, nil
}

// Current returns the user's active session and its drinks, or
// ErrSessionNotFound when monitoring is off.
func (s *SessionService) Current(userID uint) (*models.DrinkingSession, []models.DrinkRecord, error) {
	var session models.DrinkingSession
	err := s.db.Where("user_id = ? AND status = ?", userID, models.SessionActive).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var drinks []models.DrinkRecord
	if err := s.db.Where("session_id = ?", session.ID).Order("consumed_at asc").Find(&drinks).Error; err != nil {
		return nil, nil, err
	}
	return &session, drinks, nil
}

func (s *SessionService) History(userID uint) ([]models.DrinkingSession, error) {
	var sessions []models.DrinkingSession
	err := s.db.Where("user_id = ?", userID).Order("started_at desc").Find(&sessions).Error
	return sessions, err
}

// SafeToOrder is the authoritative order gate; the checkout flow must call
// it server-side before committing any order containing alcohol. It
// recomputes BAC live because the stored estimate decays between drinks.
// Fails closed: any error while a session is active blocks the order.
func (s *SessionService) SafeToOrder(userID uint) (bool, float64, error) {
	var session models.DrinkingSession
	err := s.db.Where("user_id = ? AND status = ?", userID, models.SessionActive).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No monitoring session: nothing to gate on.
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	var profile models.BiometricProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, session.EstimatedBAC, ErrProfileNotFound
		}
		return false, session.EstimatedBAC, err
	}

	hours := time.Since(session.StartedAt).Hours()
	bac, err := utils.EstimateBAC(&profile, utils.AlcoholGrams(session.TotalAlcoholMl), hours, s.cfg.EliminationRate)
	if err != nil {
		return false, session.EstimatedBAC, err
	}
	return bac < s.cfg.LegalLimitBAC, bac, nil
}

// EndIdle closes every active session without activity for the given
// window. A single guarded UPDATE keeps the sweep from racing a
// concurrent RecordDrink: whichever commits first wins the status check.
// The swept sessions come back via RETURNING so subscribers learn their
// session timed out, same as an explicit End.
func (s *SessionService) EndIdle(window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window)
	var ended []models.DrinkingSession
	res := s.db.Model(&ended).
		Clauses(clause.Returning{}).
		Where("status = ? AND updated_at < ?", models.SessionActive, cutoff).
		Updates(map[string]any{
			"status":   models.SessionEnded,
			"ended_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if s.hub != nil {
		for i := range ended {
			s.hub.Broadcast(ended[i].UserID, "session.ended", &ended[i])
		}
	}
	return res.RowsAffected, nil
}

// RunIdleSweeper blocks, periodically ending idle sessions. Run it from
// main in its own goroutine.
func (s *SessionService) RunIdleSweeper() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		n, err := s.EndIdle(s.cfg.IdleTimeout)
		if err != nil {
			log.Printf("session sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("session sweep ended %d idle session(s)", n)
		}
	}
}

// recomputeLocked re-derives BAC from the session's drink records and
// writes it onto the in-memory session. Caller holds the row lock and
// persists the session.
func (s *SessionService) recomputeLocked(tx *gorm.DB, session *models.DrinkingSession, profile *models.BiometricProfile) (float64, error) {
	var totalAlcoholMl float64
	err := tx.Model(&models.DrinkRecord{}).
		Where("session_id = ?", session.ID).
		Select("COALESCE(SUM(alcohol_ml), 0)").
		Scan(&totalAlcoholMl).Error
	if err != nil {
		return 0, err
	}

	hours := time.Since(session.StartedAt).Hours()
	bac, err := utils.EstimateBAC(profile, utils.AlcoholGrams(totalAlcoholMl), hours, s.cfg.EliminationRate)
	if err != nil {
		return 0, err
	}
	session.EstimatedBAC = bac
	return bac, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func lockSession(tx *gorm.DB, userID, sessionID uint, out *models.DrinkingSession) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}
