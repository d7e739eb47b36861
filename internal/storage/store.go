// Package storage persists the snapshot of notices seen on the last run.
// The snapshot is overwritten in full on every save; it is not a log.
package storage

import (
	"context"
	"fmt"
	"strings"

	"si-notice-monitor/internal/notice"
)

// Store loads and saves the snapshot.
type Store interface {
	// Load returns the last saved notices in saved order. A store that was
	// never written returns an empty slice and no error.
	Load(ctx context.Context) ([]notice.CategorizedNotice, error)
	// Save replaces the snapshot with notices.
	Save(ctx context.Context, notices []notice.CategorizedNotice) error
	Close() error
}

// Drivers.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", DriverCSV:
		return NewCSVStore(path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

const rowFields = 4

// encodeRow lays a notice out as [date, link, title, category_code].
func encodeRow(n notice.CategorizedNotice) []string {
	return []string{notice.FormatDate(n.Date), n.Link, n.Title, n.Category.Code()}
}

func decodeRow(row []string) (notice.CategorizedNotice, error) {
	if len(row) != rowFields {
		return notice.CategorizedNotice{}, &notice.ParseError{
			Kind: notice.KindRow,
			Msg:  fmt.Sprintf("want %d fields, got %d", rowFields, len(row)),
		}
	}
	date, err := notice.ParseDate(row[0])
	if err != nil {
		return notice.CategorizedNotice{}, err
	}
	// extracted titles are trimmed; older snapshots may carry the raw text
	return notice.NewCategorized(date, row[1], strings.TrimSpace(row[2]), row[3])
}
