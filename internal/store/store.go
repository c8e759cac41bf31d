package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dev.c0redev.pqmsg/internal/proto"
)

// fixed width so created_at sorts lexically
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DB wraps sqlite (executor request journal). Sizes and outcomes only, never payloads.
type DB struct {
	*sql.DB
}

// Open opens db at path, runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// each pooled conn would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identifier INTEGER NOT NULL,
			version INTEGER NOT NULL,
			algorithm INTEGER NOT NULL,
			operation INTEGER NOT NULL,
			success INTEGER NOT NULL,
			request_bytes INTEGER NOT NULL,
			response_bytes INTEGER NOT NULL,
			reason TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_requests_algorithm ON requests(algorithm);
		CREATE INDEX IF NOT EXISTS idx_requests_created ON requests(created_at);
	`)
	return err
}

// Entry: one handled request.
type Entry struct {
	ID            int64
	Identifier    uint64
	Version       uint8
	Algorithm     proto.Algorithm
	Operation     proto.Operation
	Success       bool
	RequestBytes  int
	ResponseBytes int
	Reason        string
	CreatedAt     time.Time
}

// Record inserts e; CreatedAt defaults to now.
func (db *DB) Record(e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	ok := 0
	if e.Success {
		ok = 1
	}
	var reason interface{}
	if e.Reason != "" {
		reason = e.Reason
	}
	// identifier is stored as its int64 bit pattern; sqlite has no unsigned 64-bit
	_, err := db.Exec(`INSERT INTO requests
		(identifier, version, algorithm, operation, success, request_bytes, response_bytes, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(e.Identifier), e.Version, uint32(e.Algorithm), uint32(e.Operation), ok,
		e.RequestBytes, e.ResponseBytes, reason, e.CreatedAt.UTC().Format(timeFormat))
	return err
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT id, identifier, version, algorithm, operation, success,
		request_bytes, response_bytes, reason, created_at
		FROM requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var identifier int64
		var alg, op uint32
		var ok int
		var reason sql.NullString
		var t string
		if err := rows.Scan(&e.ID, &identifier, &e.Version, &alg, &op, &ok,
			&e.RequestBytes, &e.ResponseBytes, &reason, &t); err != nil {
			return nil, err
		}
		e.Identifier = uint64(identifier)
		e.Algorithm = proto.Algorithm(alg)
		e.Operation = proto.Operation(op)
		e.Success = ok == 1
		e.Reason = reason.String
		if e.CreatedAt, err = time.Parse(timeFormat, t); err != nil {
			return nil, fmt.Errorf("store: created_at %q: %w", t, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AlgorithmCount: requests seen for one algorithm.
type AlgorithmCount struct {
	Algorithm proto.Algorithm
	Total     int
	Failed    int
}

// CountByAlgorithm aggregates the journal per algorithm, in wire order.
func (db *DB) CountByAlgorithm() ([]AlgorithmCount, error) {
	rows, err := db.Query(`SELECT algorithm, COUNT(*), SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END)
		FROM requests GROUP BY algorithm ORDER BY algorithm`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AlgorithmCount
	for rows.Next() {
		var c AlgorithmCount
		var alg uint32
		if err := rows.Scan(&alg, &c.Total, &c.Failed); err != nil {
			return nil, err
		}
		c.Algorithm = proto.Algorithm(alg)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Prune deletes entries older than before; returns rows removed.
func (db *DB) Prune(before time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM requests WHERE created_at < ?", before.UTC().Format(timeFormat))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
