package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"RecipeScanner/internal/domain"
)

// XLSXReader reads the first sheet of a workbook; row 1 is the header.
type XLSXReader struct{}

var _ Reader = (*XLSXReader)(nil)

func NewXLSXReader() *XLSXReader { return &XLSXReader{} }

func (x *XLSXReader) Format() string { return "xlsx" }

func (x *XLSXReader) Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.RawRow{}, nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return []domain.RawRow{}, nil
	}

	header := cleanHeader(records[0])
	rows := make([]domain.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row := toRawRow(header, record); row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
