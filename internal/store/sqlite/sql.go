package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"waymark/internal/store"
)

// RunSQL runs a read-only query with positional parameters keyed "1", "2", ...
// More than store.MaxSQLRows rows is an error rather than a silent cut.
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if err := store.CheckReadOnly(query); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, store.PositionalArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		if len(results) == store.MaxSQLRows {
			return nil, store.ErrTooManyRows
		}
		row, err := scanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows: %w", err)
	}

	c.log.Debug().Int("rows", len(results)).Msg("ran sql")
	return results, nil
}

func scanRow(rows *sql.Rows, columns []string) (map[string]any, error) {
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	row := make(map[string]any, len(columns))
	for i, col := range columns {
		row[col] = store.SQLValue(values[i])
	}
	return row, nil
}
