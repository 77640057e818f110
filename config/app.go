package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName       string
	Port          string
	Env           string
	Debug         bool
	DefaultUserID string
	ReceiptsDir   string
	ReceiptsS3    string
	BackupDir     string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = &Config{
			AppName:       GetEnv("APP_NAME", "fbadash"),
			Port:          GetEnv("PORT", "8080"),
			Env:           os.Getenv("APP_ENV"),
			Debug:         os.Getenv("DEBUG") == "true",
			DefaultUserID: GetEnv("DEFAULT_USER_ID", "local"),
			ReceiptsDir:   GetEnv("RECEIPTS_DIR", "var/receipts"),
			ReceiptsS3:    os.Getenv("RECEIPTS_S3_BUCKET"),
			BackupDir:     GetEnv("BACKUP_DIR", "var/backups"),
		}
	})
	return AppConfig
}
