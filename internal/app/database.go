package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/ground-setup/internal/config"
	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/sqlstore"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

const driverPostgres = "postgres"

// openDatabase opens the configured SQL store with query tracing.
func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	driver, dsn, system, name := databaseTarget(cfg)

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithAttributes(attribute.String("db.system", system)),
		otelsql.WithDBName(name),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == sqlstore.DriverSQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}
	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithDBName(name))

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

func databaseTarget(cfg config.Config) (driver, dsn, system, name string) {
	if cfg.Store == config.StoreSQLite {
		return sqlstore.DriverSQLite, sqliteDSN(cfg.SQLitePath), "sqlite", cfg.SQLitePath
	}
	return driverPostgres, normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary), "postgresql", dbNameFromURL(cfg.DBURL)
}

func sqliteDSN(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file:")
	query := url.Values{}
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + query.Encode()
}
