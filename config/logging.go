package config

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// InitLog configures logrus. With an empty logDir output stays on stdout.
func InitLog(logDir, logFilename, lev string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(lev); err == nil {
		log.SetLevel(level)
	} else if lev != "" {
		log.Errorf("Invalid log level '%s', using default", lev)
	}

	if logDir == "" {
		log.SetOutput(os.Stdout)
		return
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Errorf("Failed to create log directory: %v", err)
		return
	}
	if logFilename == "" {
		path, _ := os.Executable()
		_, exec := filepath.Split(path)
		logFilename = exec + ".log"
	}
	fullLogPath := filepath.Join(logDir, logFilename)

	// One file per day, keep 15
	writer, err := rotatelogs.New(fullLogPath+".%Y%m%d",
		rotatelogs.WithLinkName(fullLogPath),
		rotatelogs.WithRotationCount(15),
		rotatelogs.WithRotationTime(24*time.Hour))
	if err != nil {
		log.Errorf("Failed to initialize log rotation: %v", err)
		return
	}
	log.SetOutput(writer)
}

// InitLogFromEnv reads LOG_DIR, LOG_FILE and LOG_LEVEL.
func InitLogFromEnv() {
	InitLog(os.Getenv("LOG_DIR"), os.Getenv("LOG_FILE"), GetEnv("LOG_LEVEL", "info"))
}
