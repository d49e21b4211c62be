package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/config"
	"github.com/jmehdipour/insights-gateway/internal/events"
	"github.com/jmehdipour/insights-gateway/internal/http/middleware"
	"github.com/jmehdipour/insights-gateway/internal/logger"
	"github.com/jmehdipour/insights-gateway/internal/metrics"
	"github.com/jmehdipour/insights-gateway/internal/predictor"
	"github.com/jmehdipour/insights-gateway/internal/repository"
	"github.com/jmehdipour/insights-gateway/internal/service/fetch"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client, pub *events.Publisher) *Server {
	// repos (MySQL)
	clientsRepo := repository.NewClientsRepository(mysqlDB)
	insightsRepo := repository.NewInsightsRepository(mysqlDB)

	// repos (ClickHouse); nil connection runs without the audit trail
	var auditsRepo repository.AuditsRepository
	if clickhouseDB != nil {
		auditsRepo = repository.NewAuditsRepository(clickhouseDB)
	}

	// scoring client + poller
	scoring := predictor.NewClient(predictor.ClientOpts{
		BaseURL:      cfg.Provider.BaseURL,
		ProdBaseURL:  cfg.Provider.ProdBaseURL,
		APIKey:       cfg.Provider.APIKey,
		ServerSecret: cfg.Provider.ServerSecret,
		Version:      cfg.Provider.Version,
		TimeoutMs:    cfg.Provider.TimeoutMs,
	})
	poller := predictor.NewPoller(scoring, cfg.Poll.Budget, cfg.Poll.Interval, logger.Log)

	// services
	var evPub fetch.EventPublisher
	if pub != nil {
		evPub = pub
	}
	fetchSvc := fetch.New(
		poller,
		insightsRepo,
		auditsRepo,
		evPub,
		cfg.Provider.Version,
		logger.Log,
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(clientsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:client:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/insights/fetch", fetchInsightsHandler(fetchSvc))
	v1.GET("/insights/:request_id", getInsightHandler(insightsRepo))
	if auditsRepo != nil {
		v1.GET("/reports/fetches", listFetchesHandler(auditsRepo))
	}

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
