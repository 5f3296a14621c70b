// Package source reads purchase-history rows from spreadsheets, CSV files,
// SQL tables and HTTP downloads. Readers only parse; validation and defaulting
// happen in the insights normalizer.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"purchase-dashboard/internal/models"
)

var (
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrNoSheets          = errors.New("workbook has no sheets")
	ErrEmptySource       = errors.New("source has no header row")
	ErrSourceTooLarge    = errors.New("source exceeds download limit")
)

const DefaultTable = "purchases"

// RequiredColumns must appear in at least one row for the charts to carry
// real data instead of fill values.
var RequiredColumns = []string{"ProductCategory", "TotalPrice", "ReviewRating", "PaymentMethod"}

type Reader interface {
	Read(ctx context.Context) ([]models.Row, error)
}

type Options struct {
	// Sheet selects a workbook sheet; empty means the first one.
	Sheet string
	// Table is read by SQL sources.
	Table      string
	HTTPClient *http.Client
}

// Open picks a reader from the location's scheme or file extension.
func Open(location string, opts Options) (Reader, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}

	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		return &SQLReader{Driver: "sqlite", DSN: location[len("sqlite://"):], Table: opts.Table}, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return &PostgresReader{DSN: location, Table: opts.Table}, nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		client := opts.HTTPClient
		if client == nil {
			client = http.DefaultClient
		}
		return &HTTPReader{URL: location, Sheet: opts.Sheet, Client: client}, nil
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".xlsx", ".xlsm":
		return &XLSXReader{Path: location, Sheet: opts.Sheet}, nil
	case ".csv":
		return &CSVReader{Path: location}, nil
	case ".db", ".sqlite", ".sqlite3":
		return &SQLReader{Driver: "sqlite", DSN: location, Table: opts.Table}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, location)
}

// MissingColumns lists required columns that no row carries. Readers drop
// empty cells, so a single sparse row is not enough to call a column missing.
func MissingColumns(rows []models.Row) []string {
	seen := columnSet(rows)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := seen[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Columns returns the sorted union of row keys.
func Columns(rows []models.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	seen := columnSet(rows)
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

func columnSet(rows []models.Row) map[string]struct{} {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	return seen
}

// tableRows maps text records onto header keys. Empty cells are left out of
// the row and fully blank records are skipped.
func tableRows(header []string, records [][]string) []models.Row {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]models.Row, 0, len(records))
	for _, rec := range records {
		row := make(models.Row, len(keys))
		for i, cell := range rec {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[keys[i]] = cell
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
