package service

import (
	"context"

	"dnsfilter/app/src/server/infra"
)

const (
	DefaultTopBlockedLimit = 10
	DefaultLogLimit        = 100
	DefaultDomainLimit     = 1000
	DefaultMaxLimit        = 10000
)

const (
	actionBlocked = "blocked"
	actionAllowed = "allowed"
)

type Service struct {
	db       *infra.DB
	maxLimit int
}

func New(db *infra.DB) *Service { return &Service{db: db, maxLimit: DefaultMaxLimit} }

// NewWithMaxLimit caps every limit at maxLimit. Values <= 0 keep the default cap.
func NewWithMaxLimit(db *infra.DB, maxLimit int) *Service {
	s := New(db)
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// clamp keeps limit in [0, maxLimit]. A negative LIMIT means "no limit" to sqlite.
func (s *Service) clamp(limit int) int {
	if limit < 0 {
		return 0
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *Service) count(ctx context.Context, query string, args ...any) (int64, error) {
	row, err := s.db.FetchOne(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Int64("count"), nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.TotalBlockedDomains, err = s.count(ctx, `SELECT COUNT(*) AS count FROM blocked`); err != nil {
		return Stats{}, err
	}
	if st.BlockedQueries, err = s.count(ctx, `SELECT COUNT(*) AS count FROM queries WHERE action = ?`, actionBlocked); err != nil {
		return Stats{}, err
	}
	if st.AllowedQueries, err = s.count(ctx, `SELECT COUNT(*) AS count FROM queries WHERE action = ?`, actionAllowed); err != nil {
		return Stats{}, err
	}
	st.TotalQueries = st.BlockedQueries + st.AllowedQueries
	return st, nil
}

// TopBlocked orders by count only; the order among equal counts is up to sqlite.
func (s *Service) TopBlocked(ctx context.Context, limit int) ([]TopBlockedDomain, error) {
	rows, err := s.db.FetchAll(ctx, `
        SELECT domain, COUNT(*) AS count
        FROM queries
        WHERE action = ?
        GROUP BY domain
        ORDER BY count DESC
        LIMIT ?
    `, actionBlocked, s.clamp(limit))
	if err != nil {
		return nil, err
	}
	out := make([]TopBlockedDomain, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopBlockedDomain{Domain: r.String("domain"), Count: r.Int64("count")})
	}
	return out, nil
}

func (s *Service) BlockedLogs(ctx context.Context, limit int) ([]BlockedLog, error) {
	rows, err := s.db.FetchAll(ctx, `
        SELECT CAST(timestamp AS TEXT) AS timestamp, client_ip, domain, query_type
        FROM queries
        WHERE action = ?
        ORDER BY id DESC
        LIMIT ?
    `, actionBlocked, s.clamp(limit))
	if err != nil {
		return nil, err
	}
	out := make([]BlockedLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, BlockedLog{
			Timestamp: r.NullString("timestamp"),
			ClientIP:  r.NullString("client_ip"),
			Domain:    r.NullString("domain"),
			QueryType: r.NullString("query_type"),
		})
	}
	return out, nil
}

func (s *Service) AllowedLogs(ctx context.Context, limit int) ([]AllowedLog, error) {
	rows, err := s.db.FetchAll(ctx, `
        SELECT CAST(timestamp AS TEXT) AS timestamp, client_ip, domain, query_type, response_time
        FROM queries
        WHERE action = ?
        ORDER BY id DESC
        LIMIT ?
    `, actionAllowed, s.clamp(limit))
	if err != nil {
		return nil, err
	}
	out := make([]AllowedLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, AllowedLog{
			Timestamp:    r.NullString("timestamp"),
			ClientIP:     r.NullString("client_ip"),
			Domain:       r.NullString("domain"),
			QueryType:    r.NullString("query_type"),
			ResponseTime: r.NullFloat64("response_time"),
		})
	}
	return out, nil
}

// AllDomains returns block list entries sorted ascending, as plain strings.
func (s *Service) AllDomains(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.FetchAll(ctx, `SELECT domain FROM blocked ORDER BY domain LIMIT ?`, s.clamp(limit))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String("domain"))
	}
	return out, nil
}
