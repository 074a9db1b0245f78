package database

import (
	"fmt"
	"log"
	"time"

	"github.com/amaturano/event-management/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN builds the postgres connection string, preferring DATABASE_URI when set.
func DSN(cfg *config.Config) string {
	if cfg.DatabaseURI != "" {
		return cfg.DatabaseURI
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// Connect opens the gorm connection and stores it in DB.
func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(DSN(cfg))
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	DB = db
	log.Println("✅ Database connected")
	return db
}

// Open is Connect without the fatal exit, used by tests.
func Open(dsn string) (*gorm.DB, error) {
	// TranslateError stays off so repositories can read the pgconn constraint name.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
