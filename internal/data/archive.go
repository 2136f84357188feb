package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// archiveStore records every notified relevant item in SQLite for audit.
type archiveStore struct {
	db *sql.DB
}

// NewArchiveStore opens (creating if needed) the notified-item archive.
func NewArchiveStore(dbPath string) (repo.ArchiveRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notified_items (
			item_id     TEXT PRIMARY KEY,
			item_type   TEXT NOT NULL,
			subreddit   TEXT NOT NULL,
			title       TEXT NOT NULL,
			link        TEXT NOT NULL,
			author      TEXT NOT NULL,
			reason      TEXT NOT NULL,
			reply_draft TEXT NOT NULL,
			notified_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_notified_items_notified_at ON notified_items(notified_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &archiveStore{db: db}, nil
}

// Record inserts one notified item. Re-recording the same id is a no-op.
func (s *archiveStore) Record(ctx context.Context, item domain.RelevantItem) error {
	_, err := sq.Insert("notified_items").
		Options("OR IGNORE").
		Columns("item_id", "item_type", "subreddit", "title", "link", "author", "reason", "reply_draft", "notified_at").
		Values(item.Key(), string(item.Type), item.Subreddit, item.Title, item.Link, item.Author, item.Reason, item.ReplyDraft, time.Now().Unix()).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("record notified item: %w", err)
	}
	return nil
}

// Count returns the number of archived items.
func (s *archiveStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := sq.Select("COUNT(*)").
		From("notified_items").
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count notified items: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *archiveStore) Close() error {
	return s.db.Close()
}
