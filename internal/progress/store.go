// ABOUTME: Learner progress persistence
// ABOUTME: SQLite store for completed words and the tutorial-seen flag
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records which words a learner has completed
type Store interface {
	MarkWordComplete(ctx context.Context, wordID string) error
	CompletedWords(ctx context.Context) ([]string, error)
	IsComplete(ctx context.Context, wordID string) (bool, error)
	HasSeenTutorial(ctx context.Context) (bool, error)
	SetTutorialSeen(ctx context.Context) error
	Reset(ctx context.Context) error
	Close() error
}

const schema = `
PRAGMA busy_timeout = 10000;
PRAGMA journal_mode = WAL;
PRAGMA synchronous  = NORMAL;
PRAGMA temp_store   = MEMORY;

create table if not exists completed_words (
	word_id      text primary key not null,
	completed_at integer not null
);

create table if not exists flags (
	name  text primary key not null,
	value integer not null default 0
);`

const tutorialFlag = "tutorial_seen"

// SQLiteStore keeps progress in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}
	// WAL with one writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init progress schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// MarkWordComplete records wordID. Repeat completions keep the first time.
func (s *SQLiteStore) MarkWordComplete(ctx context.Context, wordID string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into completed_words (word_id, completed_at) values (?, ?)
		 on conflict(word_id) do nothing`,
		wordID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("mark %s complete: %w", wordID, err)
	}
	return nil
}

// CompletedWords returns completed word ids in completion order
func (s *SQLiteStore) CompletedWords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select word_id from completed_words order by completed_at, word_id`)
	if err != nil {
		return nil, fmt.Errorf("query completed words: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed word: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsComplete reports whether wordID has been completed
func (s *SQLiteStore) IsComplete(ctx context.Context, wordID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from completed_words where word_id = ?`, wordID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", wordID, err)
	}
	return n > 0, nil
}

// HasSeenTutorial reports whether the scrub tutorial was dismissed
func (s *SQLiteStore) HasSeenTutorial(ctx context.Context) (bool, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`select value from flags where name = ?`, tutorialFlag).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query tutorial flag: %w", err)
	}
	return v != 0, nil
}

// SetTutorialSeen marks the tutorial as dismissed
func (s *SQLiteStore) SetTutorialSeen(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`insert into flags (name, value) values (?, 1)
		 on conflict(name) do update set value = 1`, tutorialFlag)
	if err != nil {
		return fmt.Errorf("set tutorial flag: %w", err)
	}
	return nil
}

// Reset clears all progress
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"completed_words", "flags"} {
		if _, err := tx.ExecContext(ctx, "delete from "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
