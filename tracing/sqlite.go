package tracing

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gofreeze/feature"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Record is one stored event.
type Record struct {
	Session string
	Time    time.Time
	Feature string
	Type    string
	Kind    string
	Address uint64
	Pairs   int
	Value   float64
	Error   string
}

// SQLiteWriter buffers events and writes them to a SQLite database in
// batches. Each writer tags its rows with a fresh session ID.
type SQLiteWriter struct {
	db        *sql.DB
	statement *sql.Stmt
	session   string
	log       *logger.Logger

	mu        sync.Mutex
	buffer    []Record
	batchSize int
	closed    bool
}

// NewSQLiteWriter opens or creates the database at path. Buffered events
// are flushed when the program exits through atexit.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		time INTEGER NOT NULL,
		feature TEXT NOT NULL,
		type TEXT NOT NULL,
		kind TEXT,
		address INTEGER,
		pairs INTEGER,
		value REAL,
		error TEXT
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO events
		(session, time, feature, type, kind, address, pairs, value, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		statement: stmt,
		session:   xid.New().String(),
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "trace")),
		batchSize: 64,
	}

	atexit.Register(func() { _ = w.Close() })

	w.log.Infoln("Tracing to", path, "session", w.session)

	return w, nil
}

// Session returns the ID attached to every row this writer stores.
func (w *SQLiteWriter) Session() string {
	return w.session
}

// SetBatchSize sets how many events are buffered before a write.
func (w *SQLiteWriter) SetBatchSize(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n < 1 {
		n = 1
	}
	w.batchSize = n
}

func (w *SQLiteWriter) Report(e feature.Event) {
	rec := Record{
		Session: w.session,
		Time:    e.Time,
		Feature: e.Feature,
		Type:    string(e.Type),
		Kind:    string(e.Kind),
		Address: uint64(e.Address),
		Pairs:   e.Pairs,
		Value:   e.Value,
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.buffer = append(w.buffer, rec)
	if len(w.buffer) >= w.batchSize {
		if err := w.flushLocked(); err != nil {
			w.log.Warn("Trace flush failed: ", err)
		}
	}
}

// Flush writes every buffered event.
func (w *SQLiteWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *SQLiteWriter) flushLocked() error {
	if len(w.buffer) == 0 || w.closed {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt := tx.Stmt(w.statement)
	for _, r := range w.buffer {
		if _, err := stmt.Exec(r.Session, r.Time.UnixNano(), r.Feature, r.Type, r.Kind, int64(r.Address), r.Pairs, r.Value, r.Error); err != nil {
			_ = tx.Rollback()
			w.buffer = nil
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		w.buffer = nil
		return fmt.Errorf("commit: %w", err)
	}

	w.buffer = nil
	return nil
}

// Close flushes and closes the database. Later events are dropped.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	err := w.flushLocked()
	w.closed = true

	_ = w.statement.Close()
	return errors.Join(err, w.db.Close())
}

// ReadRecords returns the stored events at path, oldest first. An empty
// feature name selects every feature.
func ReadRecords(path, featureName string) ([]Record, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	query := `SELECT session, time, feature, type, COALESCE(kind, ''), COALESCE(address, 0),
		COALESCE(pairs, 0), COALESCE(value, 0), COALESCE(error, '') FROM events`
	var args []any
	if featureName != "" {
		query += ` WHERE feature = ?`
		args = append(args, featureName)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		var nanos, addr int64
		if err := rows.Scan(&r.Session, &nanos, &r.Feature, &r.Type, &r.Kind, &addr, &r.Pairs, &r.Value, &r.Error); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Time = time.Unix(0, nanos)
		r.Address = uint64(addr)
		out = append(out, r)
	}

	return out, rows.Err()
}
