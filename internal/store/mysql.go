package store

import (
	"errors"
	"strings"

	"yt-comment-crawler-go/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	kind:   backendMySQL,
	driver: "mysql",
	dsn: func() (string, error) {
		dsn := strings.TrimSpace(config.AppConfig.MySQLDSN)
		if dsn == "" {
			return "", errors.New("MYSQL_DSN is empty")
		}
		return dsn, nil
	},
	maxOpen: 8,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS videos (
			video_id      VARCHAR(32) NOT NULL PRIMARY KEY,
			url           VARCHAR(255) NOT NULL DEFAULT '',
			sort          VARCHAR(16) NOT NULL DEFAULT '',
			comment_count INT NOT NULL DEFAULT 0,
			top_level     INT NOT NULL DEFAULT 0,
			replies       INT NOT NULL DEFAULT 0,
			orphaned      INT NOT NULL DEFAULT 0,
			requests      INT NOT NULL DEFAULT 0,
			stop_reason   VARCHAR(64) NOT NULL DEFAULT '',
			crawled_at    BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS comments (
			comment_id VARCHAR(128) NOT NULL PRIMARY KEY,
			video_id   VARCHAR(32) NOT NULL,
			parent_id  VARCHAR(128) NOT NULL DEFAULT '',
			position   INT NOT NULL,
			body       MEDIUMTEXT NOT NULL,
			saved_at   BIGINT NOT NULL,
			KEY idx_comments_video (video_id, position)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	bind:             questionMark,
	insertCommentSQL: "INSERT IGNORE INTO comments(" + commentCols + ") VALUES(?, ?, ?, ?, ?, ?)",
	upsertVideoSQL: "INSERT INTO videos(" + videoCols + ") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		" ON DUPLICATE KEY UPDATE url=VALUES(url), sort=VALUES(sort), comment_count=VALUES(comment_count)," +
		" top_level=VALUES(top_level), replies=VALUES(replies), orphaned=VALUES(orphaned), requests=VALUES(requests)," +
		" stop_reason=VALUES(stop_reason), crawled_at=VALUES(crawled_at)",
}
