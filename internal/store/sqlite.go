package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"yt-comment-crawler-go/internal/config"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	kind:   backendSQLite,
	driver: "sqlite",
	dsn: func() (string, error) {
		p := strings.TrimSpace(config.AppConfig.SQLitePath)
		if p == "" {
			p = filepath.Join("data", "yt_comments.db")
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return "", err
		}
		return p, nil
	},
	// one writer; WAL lets the API read while a crawl writes
	maxOpen: 1,
	setup: func(db *sql.DB) error {
		for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
			if _, err := db.Exec(pragma); err != nil {
				return err
			}
		}
		return nil
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS videos (
			video_id      TEXT PRIMARY KEY,
			url           TEXT NOT NULL DEFAULT '',
			sort          TEXT NOT NULL DEFAULT '',
			comment_count INTEGER NOT NULL DEFAULT 0,
			top_level     INTEGER NOT NULL DEFAULT 0,
			replies       INTEGER NOT NULL DEFAULT 0,
			orphaned      INTEGER NOT NULL DEFAULT 0,
			requests      INTEGER NOT NULL DEFAULT 0,
			stop_reason   TEXT NOT NULL DEFAULT '',
			crawled_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			comment_id TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			parent_id  TEXT NOT NULL DEFAULT '',
			position   INTEGER NOT NULL,
			body       TEXT NOT NULL,
			saved_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id, position)`,
	},
	bind:             questionMark,
	insertCommentSQL: "INSERT OR IGNORE INTO comments(" + commentCols + ") VALUES(?, ?, ?, ?, ?, ?)",
	upsertVideoSQL: "INSERT INTO videos(" + videoCols + ") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		" ON CONFLICT(video_id) DO UPDATE SET url=excluded.url, sort=excluded.sort, comment_count=excluded.comment_count," +
		" top_level=excluded.top_level, replies=excluded.replies, orphaned=excluded.orphaned, requests=excluded.requests," +
		" stop_reason=excluded.stop_reason, crawled_at=excluded.crawled_at",
}
