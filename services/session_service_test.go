package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/antoniodjones/pours-consumer/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock, sqlDB
}

func newSessionService(db *gorm.DB) *SessionService {
	cfg := testCfg()
	alerts := NewAlertService(db, cfg, nil, nil)
	return NewSessionService(db, cfg, alerts, nil)
}

func TestStart_FailsWhenSessionAlreadyActive(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id", "status"}).
			AddRow(1, 7, "venue-1", models.SessionActive))
	mock.ExpectRollback()

	_, err := svc.Start(7, "venue-1")
	require.ErrorIs(t, err, ErrSessionAlreadyActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_TreatsUniqueViolationAsAlreadyActive(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	// Two concurrent starts can both pass the FOR UPDATE lookup before
	// either insert commits; the loser hits the partial unique index on
	// active sessions and must get the same error as the lookup path.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "drinking_sessions"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_one_active_session_per_user"})
	mock.ExpectRollback()

	_, err := svc.Start(7, "venue-1")
	require.ErrorIs(t, err, ErrSessionAlreadyActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDrink_RejectsInvalidInput(t *testing.T) {
	db, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	_, err := svc.RecordDrink(7, 1, DrinkInput{ProductID: "p1", VolumeMl: 0, AlcoholContent: 0.05})
	require.ErrorIs(t, err, ErrInvalidDrink)

	_, err = svc.RecordDrink(7, 1, DrinkInput{ProductID: "p1", VolumeMl: 330, AlcoholContent: 1.2})
	require.ErrorIs(t, err, ErrInvalidDrink)
}

func TestRecordDrink_FailsOnEndedSession(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id", "status"}).
			AddRow(3, 7, "venue-1", models.SessionEnded))
	mock.ExpectRollback()

	_, err := svc.RecordDrink(7, 3, DrinkInput{ProductID: "p1", VolumeMl: 330, AlcoholContent: 0.05})
	require.ErrorIs(t, err, ErrSessionNotActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDrink_FailsOnMissingSession(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.RecordDrink(7, 99, DrinkInput{ProductID: "p1", VolumeMl: 330, AlcoholContent: 0.05})
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnd_IsTerminal(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id", "status"}).
			AddRow(3, 7, "venue-1", models.SessionEnded))
	mock.ExpectRollback()

	_, err := svc.End(7, 3)
	require.ErrorIs(t, err, ErrSessionNotActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnd_ClosesActiveSession(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	started := time.Now().Add(-2 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id", "status", "started_at"}).
			AddRow(3, 7, "venue-1", models.SessionActive, started))
	mock.ExpectExec(`UPDATE "drinking_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := svc.End(7, 3)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEnded, session.Status)
	require.NotNil(t, session.EndedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEndIdle_BroadcastsSweptSessions(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	hub := NewRealtimeHub()
	cfg := testCfg()
	svc := NewSessionService(db, cfg, NewAlertService(db, cfg, nil, nil), hub)
	client := newHubClient(t, hub, 7)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "venue_id", "status"}).
			AddRow(3, 7, "venue-1", models.SessionEnded))
	mock.ExpectCommit()

	n, err := svc.EndIdle(6 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"session.ended"`)
}

func TestSafeToOrder_TrueWithoutActiveSession(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	safe, bac, err := svc.SafeToOrder(7)
	require.NoError(t, err)
	assert.True(t, safe)
	assert.Zero(t, bac)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSafeToOrder_FailsClosedWithoutProfile(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "started_at", "total_alcohol_ml", "estimated_bac"}).
			AddRow(3, 7, models.SessionActive, time.Now(), 500.0, 0.04))
	mock.ExpectQuery(`SELECT .+ FROM "biometric_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	safe, _, err := svc.SafeToOrder(7)
	require.ErrorIs(t, err, ErrProfileNotFound)
	assert.False(t, safe)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSafeToOrder_BlocksAtLegalLimit(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	// 120ml of pure alcohol ≈ 94.7g → well past 0.08 for a 70kg male
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "started_at", "total_alcohol_ml"}).
			AddRow(3, 7, models.SessionActive, time.Now(), 120.0))
	mock.ExpectQuery(`SELECT .+ FROM "biometric_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "weight_kg", "height_cm", "gender"}).
			AddRow(1, 7, 70.0, 175.0, "male"))

	safe, bac, err := svc.SafeToOrder(7)
	require.NoError(t, err)
	assert.False(t, safe)
	assert.GreaterOrEqual(t, bac, 0.08)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSafeToOrder_AllowsBelowLimit(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	svc := newSessionService(db)

	// one beer's worth of alcohol ≈ 0.029 BAC at T0
	mock.ExpectQuery(`SELECT .+ FROM "drinking_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "started_at", "total_alcohol_ml"}).
			AddRow(3, 7, models.SessionActive, time.Now(), 17.5))
	mock.ExpectQuery(`SELECT .+ FROM "biometric_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "weight_kg", "height_cm", "gender"}).
			AddRow(1, 7, 70.0, 175.0, "male"))

	safe, bac, err := svc.SafeToOrder(7)
	require.NoError(t, err)
	assert.True(t, safe)
	assert.Less(t, bac, 0.08)
	require.NoError(t, mock.ExpectationsWereMet())
}
