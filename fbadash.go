//go:build !cli
// +build !cli

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"fbadash/api"
	_ "fbadash/api/backup"
	_ "fbadash/api/catalog"
	graphqlApi "fbadash/api/graphql"
	_ "fbadash/api/packing"
	"fbadash/config"
	"fbadash/core/auth"
	"fbadash/cron"
	_ "fbadash/cron/jobs"
	_ "fbadash/custom"
	"fbadash/model"
)

func main() {
	config.LoadEnv()
	config.InitLogFromEnv()
	config.LoadAppConfig()

	config.InitRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if config.PingRedis(ctx) {
		log.Info("Redis connection successful.")
	} else {
		log.Info("Redis not configured or not reachable, caching in process only.")
	}
	cancel()

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Info("Database connection successful.")

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			if c.Response().Header().Get("X-Request-Duration-ms") == "" && !c.Response().Committed {
				c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			}
			log.WithFields(log.Fields{"path": c.Path(), "ms": duration}).Debug("request finished")
			return err
		}
	})
	e.Use(auth.Middleware(db))

	api.ApplyModules(e.Group("/api"), db)
	api.ApplyRoutes(e, db)
	graphqlApi.RegisterGraphQLRoutes(e, db)

	if os.Getenv("CRON_ENABLED") == "true" {
		c, err := cron.StartCron()
		if err != nil {
			log.Fatalf("cron: %v", err)
		}
		defer c.Stop()
	}

	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "doom", "larry3d", "puffy"}
	fig := figure.NewFigure("FBA Dash", fonts[rand.Intn(len(fonts))], true)
	fig.Print()
	fmt.Println()

	port := config.GetEnv("PORT", "8080")
	log.Infof("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
