package records

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the database in process memory. A single shared cache
// lets every pooled connection see the same tables.
const MemoryDSN = "file:katamini_records?mode=memory&cache=shared"

// SQLStore is a Store backed by SQLite. With MemoryDSN nothing outlives
// the process.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (and if needed creates) the records table.
func OpenSQL(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open records db: %w", err)
	}
	// An in-memory database disappears with its last connection.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS best_records (
		level_id   TEXT PRIMARY KEY,
		completed  INTEGER NOT NULL,
		score      INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	log.Println("records store initialized (sqlite)")
	return &SQLStore{db: db}, nil
}

// Close releases the database.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Get(levelID string) (Record, bool) {
	r, err := s.get(s.db, levelID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("records: load %s: %v", levelID, err)
		}
		return Record{}, false
	}
	return r, true
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *SQLStore) get(q queryer, levelID string) (Record, error) {
	row := q.QueryRow(`SELECT completed, score, elapsed_ms FROM best_records WHERE level_id = ?`, levelID)
	var (
		completed int
		r         Record
		elapsedMS int64
	)
	if err := row.Scan(&completed, &r.Score, &elapsedMS); err != nil {
		return Record{}, err
	}
	r.LevelID = levelID
	r.Completed = completed != 0
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}

func (s *SQLStore) Offer(r Record) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("records: begin: %w", err)
	}
	defer tx.Rollback()

	prev, err := s.get(tx, r.LevelID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("records: load %s: %w", r.LevelID, err)
	case !Better(prev, r):
		return false, nil
	}

	query := `
	INSERT INTO best_records (level_id, completed, score, elapsed_ms)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(level_id) DO UPDATE SET
		completed = excluded.completed,
		score = excluded.score,
		elapsed_ms = excluded.elapsed_ms;
	`
	completed := 0
	if r.Completed {
		completed = 1
	}
	if _, err := tx.Exec(query, r.LevelID, completed, r.Score, r.Elapsed.Milliseconds()); err != nil {
		return false, fmt.Errorf("records: save %s: %w", r.LevelID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("records: commit: %w", err)
	}
	return true, nil
}

func (s *SQLStore) All() ([]Record, error) {
	rows, err := s.db.Query(`SELECT level_id, completed, score, elapsed_ms FROM best_records ORDER BY level_id`)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r         Record
			completed int
			elapsedMS int64
		)
		if err := rows.Scan(&r.LevelID, &completed, &r.Score, &elapsedMS); err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		r.Completed = completed != 0
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
