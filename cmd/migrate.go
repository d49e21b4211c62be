package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmehdipour/insights-gateway/internal/config"
	"github.com/jmehdipour/insights-gateway/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := migrateMySQL(cfg); err != nil {
			return err
		}
		if err := migrateClickHouse(cfg); err != nil {
			return err
		}

		fmt.Println(">> Migration complete ✅")
		return nil
	},
}

func migrateMySQL(cfg config.Config) error {
	sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	sqlPath := filepath.Join("migrations", "001_init.sql")
	sqlBytes, err := os.ReadFile(sqlPath)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", sqlPath, err)
	}

	if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return fmt.Errorf("disable fk checks: %w", err)
	}
	if _, err := sqlDB.Exec(string(sqlBytes)); err != nil {
		_, _ = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")
		return fmt.Errorf("exec migration: %w", err)
	}
	if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return fmt.Errorf("enable fk checks: %w", err)
	}

	return nil
}

// migrateClickHouse runs the audit-table DDL statement by statement; the
// driver has no multi-statement exec.
func migrateClickHouse(cfg config.Config) error {
	if cfg.ClickHouse.DSN == "" {
		return nil
	}

	chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
		DSN:         cfg.ClickHouse.DSN,
		PingTimeout: cfg.ClickHouse.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("clickhouse connect: %w", err)
	}
	defer chDB.Close()

	sqlPath := filepath.Join("migrations", "clickhouse", "001_init.sql")
	sqlBytes, err := os.ReadFile(sqlPath)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", sqlPath, err)
	}

	for _, stmt := range strings.Split(string(sqlBytes), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := chDB.Exec(stmt); err != nil {
			return fmt.Errorf("exec clickhouse migration: %w", err)
		}
	}

	return nil
}
