package config

import (
	"fmt"
	"log"
	"os"

	"github.com/antoniodjones/pours-consumer/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.BiometricProfile{},
		&models.DrinkingSession{},
		&models.DrinkRecord{},
		&models.BiometricReading{},
		&models.SobrietyAlert{},
		&models.UserDevice{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// One active session per user, enforced at the schema level so that
	// concurrent starts cannot slip past the application check.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_session_per_user
		ON drinking_sessions (user_id) WHERE status = 'active'`).Error
	if err != nil {
		log.Fatalf("Failed to create active-session index: %v", err)
	}
}
