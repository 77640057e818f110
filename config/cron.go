package config

import "strings"

// CronSchedule returns the cron spec for a registered job. A job named "backup"
// is overridden by BACKUP_SCHEDULE, falling back to def.
func CronSchedule(name, def string) string {
	return GetEnv(strings.ToUpper(name)+"_SCHEDULE", def)
}
