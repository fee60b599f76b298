// Package cache is the offline fallback store: a local SQLite file holding,
// under one fixed namespace, the JSON array of orders submitted from this
// machine. It is read only when the backend is unreachable and is never
// reconciled against server state — a convenience, not a source of truth.
package cache

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"sisteminha/internal/model"
)

// Namespace is the single cache key, carried over from the browser app's
// localStorage key so an export/import keeps working.
const Namespace = "sisteminha-pedidos"

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("goose up: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Load reads the cached order list. A missing row, malformed JSON or a
// payload that is not an array all come back as an empty list — the cache
// degrades, it never fails the screen.
func (s *Store) Load() []model.Kit {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM cache_entries WHERE namespace = ?`, Namespace,
	).Scan(&payload)
	if err != nil {
		return []model.Kit{}
	}

	var kits []model.Kit
	if err := json.Unmarshal([]byte(payload), &kits); err != nil {
		return []model.Kit{}
	}
	if kits == nil {
		kits = []model.Kit{}
	}
	return kits
}

// NextID returns max(cached ids)+1, or 1 for an empty cache. Used to stamp
// orders submitted while offline.
func (s *Store) NextID() int64 {
	return s.nextIDIn(s.Load())
}

// Append stores one more submitted order, assigning it a local id when it
// has none, and returns the order as stored.
func (s *Store) Append(k model.Kit) (model.Kit, error) {
	kits := s.Load()
	if k.ID == 0 {
		k.ID = s.nextIDIn(kits)
	}
	kits = append(kits, k)

	payload, err := json.Marshal(kits)
	if err != nil {
		return model.Kit{}, fmt.Errorf("marshal cache payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO cache_entries (namespace, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		Namespace, string(payload),
	)
	if err != nil {
		return model.Kit{}, fmt.Errorf("write cache: %w", err)
	}
	return k, nil
}

func (s *Store) nextIDIn(kits []model.Kit) int64 {
	var max int64
	for _, k := range kits {
		if k.ID > max {
			max = k.ID
		}
	}
	return max + 1
}

// put writes a raw payload; tests use it to simulate corruption.
func (s *Store) put(payload string) error {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (namespace, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		Namespace, payload,
	)
	return err
}
