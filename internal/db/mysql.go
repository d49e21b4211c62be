package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

type MySQLOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration // default 5s
}

// NewMySQLConnection opens the insights store and pings it once.
// The DSN must carry parseTime=true: requested_at, processed_at and
// received_at scan straight into time.Time. Migrations additionally rely on
// multiStatements=true.
func NewMySQLConnection(dsn string, opts MySQLOpts) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	if !strings.Contains(dsn, "parseTime=true") {
		return nil, fmt.Errorf("MySQL DSN must set parseTime=true")
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}

	return db, nil
}
