package auth

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"fbadash/config"
	authRepo "fbadash/model/repository/auth"
)

// ContextUserKey is set on the echo context when a token resolves to a tenant.
const ContextUserKey = "user_id"

// Middleware returns the auth middleware based on AUTH_TYPE env var.
func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	skipper := buildSkipper()
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		return keyAuth(skipper)
	case "token":
		return tokenAuth(authRepo.NewAuthRepository(db), skipper)
	default:
		return basicAuth(skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func basicAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	apiKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return key == apiKey, nil
		},
		Skipper: skipper,
	})
}

// tokenAuth accepts the static API_KEY or a stored per-tenant token. A stored
// token pins the request to its tenant.
func tokenAuth(repo *authRepo.AuthRepository, skipper middleware.Skipper) echo.MiddlewareFunc {
	staticKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(token string, c echo.Context) (bool, error) {
			if staticKey != "" && token == staticKey {
				c.Set("auth_type", "static")
				return true, nil
			}
			t, err := repo.FindActiveToken(c.Request().Context(), token)
			if err != nil {
				return false, nil
			}
			c.Set("auth_type", "token")
			c.Set(ContextUserKey, t.UserID)
			return true, nil
		},
		Skipper: skipper,
	})
}

// UserID resolves the tenant of a request: token owner, then X-User-ID, then the
// configured default.
func UserID(c echo.Context) string {
	if v, ok := c.Get(ContextUserKey).(string); ok && v != "" {
		return v
	}
	if h := c.Request().Header.Get("X-User-ID"); h != "" {
		return h
	}
	if config.AppConfig != nil && config.AppConfig.DefaultUserID != "" {
		return config.AppConfig.DefaultUserID
	}
	return "local"
}
