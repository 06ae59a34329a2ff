package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists recognizer payloads so repeated runs over the same audio
// do not call the provider again.
type Store struct {
	db   *sql.DB
	path string
}

// Key identifies one recognition request.
type Key struct {
	Provider string
	Model    string
	Language string
	Prompt   string
	Audio    string
	Size     int64 // zero for remote audio
	ModTime  int64 // unix nanoseconds, zero for remote audio
}

// KeyFor builds a Key, adding size and mtime when audio is a local file
// so edits to the file miss the cache.
func KeyFor(provider, model, language, prompt, audio string) Key {
	key := Key{Provider: provider, Model: model, Language: language, Prompt: prompt, Audio: audio}
	if info, err := os.Stat(audio); err == nil && !info.IsDir() {
		if abs, err := filepath.Abs(audio); err == nil {
			key.Audio = abs
		}
		key.Size = info.Size()
		key.ModTime = info.ModTime().UnixNano()
	}
	return key
}

// Hash is the primary key stored in the database.
func (k Key) Hash() string {
	h := sha256.New()
	for _, part := range []string{
		k.Provider,
		k.Model,
		k.Language,
		k.Prompt,
		k.Audio,
		strconv.FormatInt(k.Size, 10),
		strconv.FormatInt(k.ModTime, 10),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `CREATE TABLE IF NOT EXISTS transcripts (
	key        TEXT PRIMARY KEY,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL,
	audio      TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at TEXT NOT NULL
)`

// Open creates the database file and its parent directory when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored payload and whether one was found.
func (s *Store) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var payload []byte
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT payload FROM transcripts WHERE key = ?",
			key.Hash(),
		).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached transcript: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, payload []byte) error {
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO transcripts (key, provider, model, audio, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
			key.Hash(),
			key.Provider,
			key.Model,
			key.Audio,
			payload,
			time.Now().UTC().Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// Count returns the number of cached transcripts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transcripts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
