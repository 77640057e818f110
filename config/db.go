package config

import (
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the database selected by DB_DRIVER (mysql, postgres or sqlite).
func NewDB() (*gorm.DB, error) {
	dialector, err := dialectorFromEnv()
	if err != nil {
		return nil, err
	}

	logMode := logger.Warn
	switch os.Getenv("GORM_LOG") {
	case "off":
		logMode = logger.Silent
	case "info":
		logMode = logger.Info
	}

	gormLogger := logger.New(
		log.StandardLogger(), // logrus implements Printf
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      logMode,     // Log level
			Colorful:      false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFromEnv() (gorm.Dialector, error) {
	switch driver := GetEnv("DB_DRIVER", "mysql"); driver {
	case "mysql":
		return mysql.Open(mysqlDSN()), nil
	case "postgres":
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(GetEnv("SQLITE_PATH", "fbadash.db")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func mysqlDSN() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	user := os.Getenv("MYSQL_USER")
	pass := os.Getenv("MYSQL_PASS")
	host := GetEnv("MYSQL_HOST", "127.0.0.1")
	port := GetEnv("MYSQL_PORT", "3306")
	db := os.Getenv("MYSQL_DB")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local&clientFoundRows=true", user, pass, host, port, db)
}
