package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmehdipour/insights-gateway/internal/http/middleware"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmehdipour/insights-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func listFetchesHandler(auditsRepo repository.AuditsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := middleware.ClientIDFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var outcome model.FetchOutcome
		if raw := strings.TrimSpace(c.QueryParam("outcome")); raw != "" {
			tmp := model.FetchOutcome(raw)
			if tmp.Valid() {
				outcome = tmp
			}
		}

		customerID := strings.TrimSpace(c.QueryParam("customer_id"))

		audits, err := auditsRepo.List(
			c.Request().Context(),
			customerID,
			outcome,
			limit,
			offset,
		)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(audits),
			"results": audits,
		})
	}
}
