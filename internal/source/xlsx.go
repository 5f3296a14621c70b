package source

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"purchase-dashboard/internal/models"
)

// XLSXReader streams one worksheet; the first row is the header.
type XLSXReader struct {
	Path  string
	Sheet string
}

func (r *XLSXReader) Read(ctx context.Context) ([]models.Row, error) {
	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(ctx, f, r.Sheet)
}

func readWorkbookFrom(ctx context.Context, src io.Reader, sheet string) ([]models.Row, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(ctx, f, sheet)
}

func readWorkbook(ctx context.Context, f *excelize.File, sheet string) ([]models.Row, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if header == nil {
			header = cols
			continue
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(header) == 0 {
		return nil, ErrEmptySource
	}

	return tableRows(header, records), nil
}
