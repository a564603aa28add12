package infra

import (
	"fmt"
	"strconv"
	"time"
)

// TimeLayout matches sqlite's CURRENT_TIMESTAMP text.
const TimeLayout = "2006-01-02 15:04:05"

// Row maps column name to the value the sqlite driver scanned: int64,
// float64, string, []byte, time.Time (DATETIME columns) or nil.
type Row map[string]any

// Int64 returns the column as an integer. NULL or a missing column yields 0.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// String returns the column as text. NULL yields "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(TimeLayout)
	default:
		return fmt.Sprint(v)
	}
}

// NullString is String that keeps NULL as nil.
func (r Row) NullString(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

// NullFloat64 returns nil for NULL or non-numeric values.
func (r Row) NullFloat64(col string) *float64 {
	var f float64
	switch v := r[col].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case string:
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = p
	case []byte:
		p, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	return &f
}
