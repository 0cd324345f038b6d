package db

import (
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to MySQL using dsn.
func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return openGorm(mysql.Open(dsn), level)
}

// OpenSQLite opens a SQLite database (":memory:" or a file path). SQLite
// allows one writer at a time, so the pool is capped at a single connection
// and every transaction is serialized.
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	gdb, err := openGorm(sqlite.Open(path), level)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	// an in-memory database lives only as long as its connection
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	return gdb, nil
}

// OpenGormWithDialector is OpenGorm for a prebuilt dialector (tests use it
// with sqlmock-backed connections).
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openGorm(dial, logger.Warn)
}

func openGorm(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}
