package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"waymark/internal/store"
)

// RunSQL runs a read-only query with positional parameters keyed "1", "2", ...
// The query runs in a read-only transaction, so the keyword guard is not the
// only line of defence.
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if err := store.CheckReadOnly(query); err != nil {
		return nil, err
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read-only transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, query, store.PositionalArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collecting sql rows: %w", err)
	}
	if len(results) > store.MaxSQLRows {
		return nil, store.ErrTooManyRows
	}

	for _, row := range results {
		for col, value := range row {
			row[col] = store.SQLValue(value)
		}
	}

	c.log.Debug().Int("rows", len(results)).Msg("ran sql")
	return results, nil
}
