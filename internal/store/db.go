package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"csv2json/internal/config"
)

// ErrDisabled is returned by Open when no driver is configured.
var ErrDisabled = errors.New("store: no DB_DRIVER configured")

// Open connects to the configured history database and creates the tables.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case "":
		return nil, ErrDisabled
	case "mysql":
		db, err = openMySQL(cfg)
	case "sqlite":
		db, err = sql.Open("sqlite", cfg.SQLitePath)
		if err == nil {
			// one writer at a time
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("store: unsupported DB_DRIVER %q (use mysql or sqlite)", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, sq: sq.StatementBuilder, driver: cfg.DBDriver, timeout: cfg.QueryTimeout}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout+s.timeout)
	defer cancel()
	if err := db.PingContext(cctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.withLock(cctx, migrateLock, 10, s.Migrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func openMySQL(cfg *config.Config) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.MySQLUser
	mc.Passwd = cfg.MySQLPassword
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.MySQLHost, cfg.MySQLPort)
	mc.DBName = cfg.MySQLDB
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.QueryTimeout
	mc.WriteTimeout = cfg.QueryTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	mc.Collation = "utf8mb4_unicode_ci"

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, err
	}

	// Pool tuning
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}
