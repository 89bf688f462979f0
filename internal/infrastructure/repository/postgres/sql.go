package postgres

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isBindParameterMismatch reports the 08P01 protocol violation lib/pq raises
// when a pooled connection replays a query against a stale prepared statement.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "parameters")
}

// isUnnamedPreparedStatementMissing catches SQLSTATE 26000. Transaction-pooling
// proxies hand back a different backend between Parse and Bind, so the unnamed
// statement the driver just prepared is gone.
func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "unnamed prepared statement does not exist") {
		return true
	}
	return strings.Contains(msg, "26000")
}

// quoteLiteral escapes a value for inlining into SQL when the prepared
// statement path is unavailable. Single quotes are doubled per the SQL
// standard.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func nullStringToInt64(value sql.NullString) int64 {
	if !value.Valid {
		return 0
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value.String), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
