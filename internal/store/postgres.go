package store

import (
	"errors"
	"strings"

	"yt-comment-crawler-go/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	kind:   backendPostgres,
	driver: "pgx",
	dsn: func() (string, error) {
		dsn := strings.TrimSpace(config.AppConfig.PostgresDSN)
		if dsn == "" {
			return "", errors.New("POSTGRES_DSN is empty")
		}
		return dsn, nil
	},
	maxOpen: 8,
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
			crawled_at    BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			comment_id TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			parent_id  TEXT NOT NULL DEFAULT '',
			position   INTEGER NOT NULL,
			body       JSONB NOT NULL,
			saved_at   BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id, position)`,
	},
	bind:             dollar,
	insertCommentSQL: "INSERT INTO comments(" + commentCols + ") VALUES($1, $2, $3, $4, $5, $6) ON CONFLICT (comment_id) DO NOTHING",
	upsertVideoSQL: "INSERT INTO videos(" + videoCols + ") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)" +
		" ON CONFLICT (video_id) DO UPDATE SET url=EXCLUDED.url, sort=EXCLUDED.sort, comment_count=EXCLUDED.comment_count," +
		" top_level=EXCLUDED.top_level, replies=EXCLUDED.replies, orphaned=EXCLUDED.orphaned, requests=EXCLUDED.requests," +
		" stop_reason=EXCLUDED.stop_reason, crawled_at=EXCLUDED.crawled_at",
}
