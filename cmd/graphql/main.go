// Standalone read-only GraphQL server. Run with: go run ./cmd/graphql
package main

import (
	"fmt"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"fbadash/api"
	graphqlApi "fbadash/api/graphql"
	"fbadash/config"
	"fbadash/core/auth"
	_ "fbadash/custom"
	"fbadash/model"
)

func main() {
	config.LoadEnv()
	config.InitLogFromEnv()
	config.InitRedis()

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("db: ", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatal("migrate: ", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(auth.Middleware(db))
	graphqlApi.RegisterGraphQLRoutes(e, db)
	api.ApplyRoutes(e, db)

	fonts := []string{"banner", "big", "slant", "standard", "small", "doom"}
	fig := figure.NewFigure("FBA Dash GQL", fonts[rand.Intn(len(fonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := config.GetEnv("PORT", "8080")
	log.Infof("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
