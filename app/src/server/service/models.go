package service

type Stats struct {
	TotalBlockedDomains int64 `json:"total_blocked_domains"`
	BlockedQueries      int64 `json:"blocked_queries"`
	AllowedQueries      int64 `json:"allowed_queries"`
	TotalQueries        int64 `json:"total_queries"`
}

type TopBlockedDomain struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// BlockedLog fields are nil where the stored column is NULL. The timestamp is
// the stored text, unparsed.
type BlockedLog struct {
	Timestamp *string `json:"timestamp"`
	ClientIP  *string `json:"client_ip"`
	Domain    *string `json:"domain"`
	QueryType *string `json:"query_type"`
}

// AllowedLog carries the upstream response time. NULL is encoded as null.
type AllowedLog struct {
	Timestamp    *string  `json:"timestamp"`
	ClientIP     *string  `json:"client_ip"`
	Domain       *string  `json:"domain"`
	QueryType    *string  `json:"query_type"`
	ResponseTime *float64 `json:"response_time"`
}
