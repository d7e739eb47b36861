package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"si-notice-monitor/internal/notice"
)

// utf8BOM starts every file we write so spreadsheet tools read it as UTF-8.
var utf8BOM = []byte("\xEF\xBB\xBF")

// CSVStore keeps the snapshot in a single CSV file, one row per notice.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store backed by the file at path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load(ctx context.Context) ([]notice.CategorizedNotice, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []notice.CategorizedNotice{}, nil
		}
		return nil, fmt.Errorf("open snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	notices := make([]notice.CategorizedNotice, 0)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
		}
		n, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s line %d: %w", s.path, line, err)
		}
		notices = append(notices, n)
	}
	return notices, nil
}

// Save writes to a temporary file next to the snapshot and renames it into
// place, so a crash never leaves a half-written snapshot behind.
func (s *CSVStore) Save(ctx context.Context, notices []notice.CategorizedNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := writeCSV(tmp, notices); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}

func writeCSV(w io.Writer, notices []notice.CategorizedNotice) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for _, n := range notices {
		if err := cw.Write(encodeRow(n)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *CSVStore) Close() error {
	return nil
}
