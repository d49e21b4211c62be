package http

import (
	"net/http"
	"strings"

	"github.com/jmehdipour/insights-gateway/internal/http/middleware"
	"github.com/jmehdipour/insights-gateway/internal/repository"
	"github.com/labstack/echo/v4"
)

func getInsightHandler(insights repository.InsightsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := middleware.ClientIDFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		requestID := strings.TrimSpace(c.Param("request_id"))
		if requestID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "request_id is required"})
		}

		ins, err := insights.GetByRequestID(c.Request().Context(), requestID)
		if err != nil {
			c.Logger().Errorf("get insight failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}
		if ins == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		return c.JSON(http.StatusOK, ins)
	}
}
