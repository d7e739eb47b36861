package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"si-notice-monitor/internal/notice"
)

// SQLiteStore keeps the snapshot in a notices table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS notices (
        position INTEGER PRIMARY KEY,
        date     TEXT NOT NULL,
        link     TEXT NOT NULL,
        title    TEXT NOT NULL,
        category TEXT NOT NULL
    )`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create notices table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]notice.CategorizedNotice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date, link, title, category FROM notices ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query notices: %w", err)
	}
	defer rows.Close()

	notices := make([]notice.CategorizedNotice, 0)
	for rows.Next() {
		row := make([]string, rowFields)
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3]); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		n, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("notice row %d: %w", len(notices), err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notices: %w", err)
	}
	return notices, nil
}

// Save replaces every row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, notices []notice.CategorizedNotice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notices"); err != nil {
		return fmt.Errorf("clear notices: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO notices (position, date, link, title, category) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notices {
		row := encodeRow(n)
		if _, err := stmt.ExecContext(ctx, i, row[0], row[1], row[2], row[3]); err != nil {
			return fmt.Errorf("insert notice %q: %w", n.Title, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
