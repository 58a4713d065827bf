// Package database owns the MySQL connection pool and the schema bootstrap.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool sizing for a single API process.  Writes are rare (admin mutations
// only); the pool is sized for the read endpoints, and idle connections are
// kept warm so a search burst does not pay connection setup.
const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// dsn assembles the driver connection string.  parseTime makes DATETIME
// columns scan into time.Time, and loc=UTC pins them to the zone the schema
// stores; the password is escaped so it may contain DSN metacharacters.
func dsn(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = user + ":" + url.QueryEscape(pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// Open builds the connection pool and verifies the server is reachable
// before the caller starts serving.  An unreachable database at boot is a
// configuration problem, not something to retry through.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
