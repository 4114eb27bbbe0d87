// Package migrations embeds the SQL schema for the subscriber table, one
// directory per database backend.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// Source returns the migration files for backend ("postgres" or "mysql").
func Source(backend string) (fs.FS, error) {
	switch backend {
	case "postgres", "mysql":
		return fs.Sub(files, backend)
	default:
		return nil, fmt.Errorf("migrations: unsupported backend %q", backend)
	}
}

// DatabaseURL turns the DSN the service uses into a golang-migrate URL.
// Postgres DSNs must be in URL form; MySQL DSNs use the go-sql-driver format.
func DatabaseURL(backend, dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", fmt.Errorf("migrations: empty DSN")
	}
	switch backend {
	case "postgres":
		u, err := url.Parse(dsn)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			return "", fmt.Errorf("migrations: postgres DSN must be a postgres:// URL")
		}
		return dsn, nil
	case "mysql":
		dsn = strings.TrimPrefix(dsn, "mysql://")
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		if !strings.Contains(dsn, "multiStatements=") {
			dsn += sep + "multiStatements=true"
		}
		return "mysql://" + dsn, nil
	default:
		return "", fmt.Errorf("migrations: unsupported backend %q", backend)
	}
}

// New prepares a migrator for backend against dsn.
func New(backend, dsn string) (*migrate.Migrate, error) {
	src, err := Source(backend)
	if err != nil {
		return nil, err
	}
	driver, err := iofs.New(src, ".")
	if err != nil {
		return nil, fmt.Errorf("migrations: open source: %w", err)
	}
	dbURL, err := DatabaseURL(backend, dsn)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", driver, dbURL)
}
