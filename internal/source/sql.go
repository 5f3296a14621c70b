package source

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"purchase-dashboard/internal/models"
)

// SQLReader reads every row of Table through database/sql.
type SQLReader struct {
	Driver string
	DSN    string
	Table  string
}

func (r *SQLReader) Read(ctx context.Context) ([]models.Row, error) {
	db, err := sql.Open(r.Driver, r.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(r.Table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []models.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, columnRow(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.Table, err)
	}
	return out, nil
}

// PostgresReader reads every row of Table through a pgx pool.
type PostgresReader struct {
	DSN   string
	Table string
}

func (r *PostgresReader) Read(ctx context.Context) ([]models.Row, error) {
	pool, err := pgxpool.New(ctx, r.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{r.Table}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, columnRow(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.Table, err)
	}
	return out, nil
}

// columnRow drops NULLs and unwraps driver values such as numerics into
// plain scalars.
func columnRow(cols []string, values []any) models.Row {
	row := make(models.Row, len(cols))
	for i, col := range cols {
		v := values[i]
		if valuer, ok := v.(driver.Valuer); ok {
			if dv, err := valuer.Value(); err == nil {
				v = dv
			}
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if v != nil {
			row[col] = v
		}
	}
	return row
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
