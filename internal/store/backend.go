package store

import (
	"strings"

	"yt-comment-crawler-go/internal/config"
)

type sqlBackendKind string

const (
	backendFile     sqlBackendKind = "file"
	backendSQLite   sqlBackendKind = "sqlite"
	backendMySQL    sqlBackendKind = "mysql"
	backendPostgres sqlBackendKind = "postgres"
	backendMongoDB  sqlBackendKind = "mongodb"
)

// backendKind reads STORE_BACKEND; anything unrecognised falls back to the
// plain file output.
func backendKind() sqlBackendKind {
	switch strings.ToLower(strings.TrimSpace(config.AppConfig.StoreBackend)) {
	case "sqlite", "sqlite3":
		return backendSQLite
	case "mysql", "mariadb":
		return backendMySQL
	case "postgres", "postgresql", "pg":
		return backendPostgres
	case "mongodb", "mongo":
		return backendMongoDB
	}
	return backendFile
}

func dialectFor(k sqlBackendKind) (dialect, bool) {
	switch k {
	case backendSQLite:
		return sqliteDialect, true
	case backendMySQL:
		return mysqlDialect, true
	case backendPostgres:
		return postgresDialect, true
	}
	return dialect{}, false
}
