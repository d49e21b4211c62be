package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/config"
	"github.com/jmehdipour/insights-gateway/internal/db"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo API clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo API clients...")

		if err := seedClients(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed ✅")
		return nil
	},
}

// seedClients inserts deterministic demo clients (idempotent).
func seedClients(dbx *sqlx.DB) error {
	clients := []model.Client{
		{
			Name:         "Risk Dashboard",
			APIKey:       "11111111111111111111111111111111",
			Status:       "active",
			RateLimitRPS: intptr(20),
		},
		{
			Name:         "Loan Origination",
			APIKey:       "22222222222222222222222222222222",
			Status:       "active",
			RateLimitRPS: intptr(50),
		},
		{
			Name:         "Collections Batch",
			APIKey:       "33333333333333333333333333333333",
			Status:       "active",
			RateLimitRPS: intptr(5),
		},
		{
			Name:         "Suspended Tool",
			APIKey:       "44444444444444444444444444444444",
			Status:       "suspended",
			RateLimitRPS: nil,
		},
	}

	// idempotent upsert based on api_key (UNIQUE)
	const q = `
INSERT INTO api_clients
    (name, api_key, status, rate_limit_rps, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    name        = VALUES(name),
    status      = VALUES(status),
    rate_limit_rps = VALUES(rate_limit_rps),
    updated_at  = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, cl := range clients {
		if _, err := tx.Exec(q, cl.Name, cl.APIKey, cl.Status, cl.RateLimitRPS, now, now); err != nil {
			return fmt.Errorf("insert client %q: %w", cl.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clients: %w", err)
	}
	return nil
}

func intptr(i int) *int { return &i }
