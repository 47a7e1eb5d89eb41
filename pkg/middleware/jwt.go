package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"SmartScore/internal/auth"
)

// JWT parses the bearer token and stashes the claims on the context for
// handlers and the RBAC layer.
func JWT(config *auth.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := auth.ValidateJWT(config.JWTKey, tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
			}
			c.Set("user", claims)
			return next(c)
		}
	}
}
