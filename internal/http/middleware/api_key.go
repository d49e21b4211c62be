package middleware

import (
	"net/http"
	"strings"

	"github.com/jmehdipour/insights-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
)

// ClientIDFromCtx extracts the authenticated client_id set by APIKeyMiddleware.
func ClientIDFromCtx(c echo.Context) (int64, bool) {
	v := c.Get("client_id")
	id, ok := v.(int64)
	return id, ok
}

// APIKeyMiddleware authenticates requests using X-API-Key header.
// On success it stores client_id in context and blocks suspended accounts.
func APIKeyMiddleware(clients repository.ClientsRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			cl, err := clients.GetByAPIKey(c.Request().Context(), key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
			if cl == nil || cl.Status != "active" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set("client_id", cl.ID)
			if cl.RateLimitRPS != nil {
				c.Set("client_rps", *cl.RateLimitRPS)
			}
			return next(c)
		}
	}
}
