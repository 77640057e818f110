package cron

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// StartCron schedules every registered job and starts the scheduler.
func StartCron() (*cron.Cron, error) {
	c := cron.New()
	for name, j := range Jobs() {
		run := j.Run
		name := name
		if _, err := c.AddFunc(j.Schedule, func() {
			log.WithField("job", name).Info("cron job started")
			run()
		}); err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
		log.WithFields(log.Fields{"job": name, "schedule": j.Schedule}).Info("cron job registered")
	}
	c.Start()
	return c, nil
}
