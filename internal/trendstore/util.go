package trendstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// rebind rewrites ? placeholders into $1..$n for PostgreSQL. SQLite and MySQL
// take ? natively, so queries are written once with ? and rebound here.
func (ts *TrendStoreImpl) rebind(query string) string {
	if ts.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsertSuffix returns the backend's conflict clause updating the given
// columns from the incoming row.
func (ts *TrendStoreImpl) upsertSuffix(pkCols, updateCols []string) string {
	switch ts.backend {
	case schema.MySQLBackend:
		parts := make([]string, len(updateCols))
		for i, col := range updateCols {
			parts[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
		}
		return "ON DUPLICATE KEY UPDATE " + strings.Join(parts, ", ")
	default: // SQLite and PostgreSQL share ON CONFLICT syntax
		parts := make([]string, len(updateCols))
		for i, col := range updateCols {
			parts[i] = fmt.Sprintf("%s = excluded.%s", col, col)
		}
		return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(pkCols, ", "), strings.Join(parts, ", "))
	}
}

// insertIgnorePrefix returns the INSERT verb that skips duplicate-key rows.
func (ts *TrendStoreImpl) insertIgnorePrefix() string {
	if ts.backend == schema.MySQLBackend {
		return "INSERT IGNORE"
	}
	return "INSERT"
}

// insertIgnoreSuffix returns the conflict clause that skips duplicate-key rows.
func (ts *TrendStoreImpl) insertIgnoreSuffix(pkCols []string) string {
	if ts.backend == schema.MySQLBackend {
		return ""
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(pkCols, ", "))
}

// placeholders returns "?, ?, ..." of length n.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// joinCols joins column names for SELECT/INSERT lists.
func joinCols(cols []string) string {
	return strings.Join(cols, ", ")
}

func nanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func timeFromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
