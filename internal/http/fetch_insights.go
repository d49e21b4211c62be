package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jmehdipour/insights-gateway/internal/http/middleware"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmehdipour/insights-gateway/internal/predictor"
	"github.com/jmehdipour/insights-gateway/internal/service/fetch"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type fetchReq struct {
	CustomerID string `json:"customer_id"`
	RequestID  string `json:"request_id"`
	Env        string `json:"env"` // "uat" | "prod", default uat
}

func fetchInsightsHandler(fetchSvc *fetch.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req fetchReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		// Normalize
		req.CustomerID = strings.TrimSpace(req.CustomerID)
		req.RequestID = strings.TrimSpace(req.RequestID)

		// Basic validation
		if req.CustomerID == "" || req.RequestID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id and request_id are required"})
		}

		if len(req.CustomerID) > 128 || len(req.RequestID) > 128 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "identifier too long"})
		}

		env, ok := model.ParseEnvironment(req.Env)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid env"})
		}

		// auth (set by APIKeyMiddleware)
		if _, ok := middleware.ClientIDFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		// poll the scoring API, then upsert the last observed result
		ins, err := fetchSvc.Fetch(c.Request().Context(), model.FetchRequest{
			CustomerID:  req.CustomerID,
			RequestID:   req.RequestID,
			Environment: env,
		})
		if err != nil {
			return fetchErrorResponse(c, err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"ok":             true,
			"stored_status":  ins.Status,
			"stored_message": ins.Message,
		})
	}
}

// fetchErrorResponse maps run failures onto caller-visible codes: 403 the
// upstream rejected our credentials, 502 the upstream answered but with an
// error, 504 it never answered within the poll budget, 500 we could not
// persist what it answered.
func fetchErrorResponse(c echo.Context, err error) error {
	var ue *predictor.UpstreamError
	switch {
	case errors.Is(err, predictor.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.As(err, &ue):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": ue.Error()})
	case errors.Is(err, predictor.ErrNoResponse):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	case errors.Is(err, fetch.ErrStoreFailed):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	log.Errorf("fetch failed: %v", err)

	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
