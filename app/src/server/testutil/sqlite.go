package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Schema is the layout the DNS filter writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS blocked (
  domain TEXT UNIQUE NOT NULL
);
CREATE TABLE IF NOT EXISTS queries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
  client_ip TEXT,
  domain TEXT,
  query_type TEXT,
  action TEXT,
  response_time REAL
);
`

// Store is a writable sqlite file for seeding fixtures.
type Store struct {
	Path string
	t    *testing.T
	db   *sql.DB
}

// NewStore creates an empty database with Schema under t.TempDir().
func NewStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreWithSchema(t, Schema)
}

// NewStoreWithSchema creates a database with a custom schema, e.g. one missing a table.
func NewStoreWithSchema(t *testing.T, schema string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dns_filter.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return &Store{Path: path, t: t, db: db}
}

func (s *Store) Block(domains ...string) {
	s.t.Helper()
	for _, d := range domains {
		_, err := s.db.Exec(`INSERT INTO blocked(domain) VALUES (?)`, d)
		require.NoError(s.t, err)
	}
}

// Query inserts one query event. A nil responseTime stores NULL.
func (s *Store) Query(clientIP, domain, qtype, action string, responseTime *float64) {
	s.t.Helper()
	var rt any
	if responseTime != nil {
		rt = *responseTime
	}
	_, err := s.db.Exec(`INSERT INTO queries(client_ip, domain, query_type, action, response_time) VALUES (?, ?, ?, ?, ?)`,
		clientIP, domain, qtype, action, rt)
	require.NoError(s.t, err)
}

// QueryAt is Query with an explicit timestamp text.
func (s *Store) QueryAt(ts, clientIP, domain, qtype, action string, responseTime *float64) {
	s.t.Helper()
	var rt any
	if responseTime != nil {
		rt = *responseTime
	}
	_, err := s.db.Exec(`INSERT INTO queries(timestamp, client_ip, domain, query_type, action, response_time) VALUES (?, ?, ?, ?, ?, ?)`,
		ts, clientIP, domain, qtype, action, rt)
	require.NoError(s.t, err)
}

// Exec runs raw SQL against the fixture, e.g. to store NULLs.
func (s *Store) Exec(query string, args ...any) {
	s.t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(s.t, err)
}

// Repeat inserts n identical query events.
func (s *Store) Repeat(n int, domain, action string) {
	s.t.Helper()
	for i := 0; i < n; i++ {
		s.Query("192.168.1.10", domain, "A", action, nil)
	}
}

func Ptr(f float64) *float64 { return &f }
