package infra

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"sync"

	_ "modernc.org/sqlite"
)

const DefaultBusyTimeoutMs = 5000

type Options struct {
	Path string
	// ReadOnly opens the file with mode=ro. The query log is written by another process.
	ReadOnly      bool
	BusyTimeoutMs int
}

// DB is the single shared handle to the sqlite store. It must be initialized
// before use and is safe for concurrent readers.
type DB struct {
	opts Options

	mu   sync.RWMutex
	conn *sql.DB
}

func New(opts Options) *DB {
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = DefaultBusyTimeoutMs
	}
	return &DB{opts: opts}
}

func (db *DB) Path() string { return db.opts.Path }

// dsn builds a file: URI. The path is percent-escaped so that '?', '#' and
// '%' in a directory or file name are not read as URI syntax.
func (db *DB) dsn() string {
	path := (&url.URL{Path: db.opts.Path}).EscapedPath()
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, db.opts.BusyTimeoutMs)
	if db.opts.ReadOnly {
		dsn += "&mode=ro"
	}
	return dsn
}

// Initialize opens the store. Calling it on an open handle is a no-op.
func (db *DB) Initialize(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn != nil {
		return nil
	}

	// sql.Open is lazy and sqlite would create an empty file, so check first.
	if _, err := os.Stat(db.opts.Path); err != nil {
		return unavailable(db.opts.Path, err)
	}
	conn, err := sql.Open("sqlite", db.dsn())
	if err != nil {
		return unavailable(db.opts.Path, err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return unavailable(db.opts.Path, err)
	}
	db.conn = conn
	return nil
}

// Get returns the open connection or ErrNotInitialized.
func (db *DB) Get() (*sql.DB, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.conn == nil {
		return nil, ErrNotInitialized
	}
	return db.conn, nil
}

// Shutdown closes the store. It is safe to call on a closed handle.
func (db *DB) Shutdown() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// FetchAll runs a read-only statement with positional args and returns every row.
// No match yields an empty, non-nil slice.
func (db *DB) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	return db.fetch(ctx, query, 0, args)
}

// FetchOne returns the first row of the result, or nil when there is none.
func (db *DB) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := db.fetch(ctx, query, 1, args)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// fetch reads at most limit rows, or all of them when limit is 0.
func (db *DB) fetch(ctx context.Context, query string, limit int, args []any) ([]Row, error) {
	conn, err := db.Get()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryFailure(query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, queryFailure(query, err)
	}
	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, queryFailure(query, err)
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailure(query, err)
	}
	return out, nil
}
