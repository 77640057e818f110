package custom

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fbadash/api"
	"fbadash/cmd"
	"fbadash/config"
	"fbadash/cron"
	gqlregistry "fbadash/graphql/registry"
)

var started = time.Now()

func init() {
	// GraphQL extension
	gqlregistry.Register("ping", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"pong": "ok"}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})

	// Cron job
	cron.Register("customping", config.CronSchedule("customping", "@every 1h"), func(args ...string) {
		log.WithField("args", args).Debug("custom cron ping")
	})

	// HTTP routes
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"pong": "ok"})
	})
	api.RegisterPOST("/custom/ping", func(c echo.Context) error {
		var body struct {
			Message string `json:"message"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(400, map[string]string{"error": "invalid body"})
		}
		if body.Message == "" {
			body.Message = "ok"
		}
		return c.JSON(200, map[string]string{"pong": body.Message})
	})
	api.RegisterRoute(func(e *echo.Echo, db *gorm.DB) {
		e.GET("/health", func(c echo.Context) error {
			status, code := "ok", 200
			if db != nil {
				if sqldb, err := db.DB(); err != nil || sqldb.PingContext(c.Request().Context()) != nil {
					status, code = "db unavailable", 503
				}
			}
			return c.JSON(code, echo.Map{
				"status": status,
				"redis":  config.RedisClient != nil,
				"uptime": time.Since(started).Round(time.Second).String(),
			})
		})
	})
}
