package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxSQLRows caps how many rows RunSQL returns.
const MaxSQLRows = 1000

var (
	ErrWriteQuery  = errors.New("only single read-only statements are allowed")
	ErrTooManyRows = fmt.Errorf("query returned more than %d rows", MaxSQLRows)
)

var readOnlyKeywords = []string{"SELECT", "WITH", "EXPLAIN", "VALUES"}

// CheckReadOnly rejects anything but a single SELECT-like statement. It is a
// guard for the query surfaces, not a sandbox.
func CheckReadOnly(query string) error {
	trimmed := strings.TrimSpace(query)
	trimmed = strings.TrimSuffix(trimmed, ";")
	if trimmed == "" {
		return fmt.Errorf("query must not be empty")
	}
	if strings.Contains(trimmed, ";") {
		return ErrWriteQuery
	}

	fields := strings.Fields(strings.TrimLeft(trimmed, "( \t\n"))
	if len(fields) == 0 {
		return ErrWriteQuery
	}
	first := strings.ToUpper(fields[0])
	for _, keyword := range readOnlyKeywords {
		if first == keyword {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", first, ErrWriteQuery)
}

// PositionalArgs orders params keyed "1", "2", ... into a slice; gaps end the
// sequence.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		val, ok := params[fmt.Sprint(i)]
		if !ok {
			break
		}
		args = append(args, val)
	}
	return args
}

// SQLValue converts a driver value into one that prints and encodes as JSON
// the same way for both backends.
func SQLValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	}
	return v
}
