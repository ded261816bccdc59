package parser

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"RecipeScanner/internal/domain"
)

const utf8BOM = "\xef\xbb\xbf"

// CSVReader reads comma separated exports whose first record is the header.
type CSVReader struct {
	comma rune
}

var _ Reader = (*CSVReader)(nil)

// NewCSVReader creates a reader for comma separated files.
func NewCSVReader() *CSVReader {
	return &CSVReader{comma: ','}
}

func (c *CSVReader) Format() string { return "csv" }

// Read maps every data record onto the header; ragged rows are tolerated.
func (c *CSVReader) Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = c.comma
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.RawRow{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)

	rows := make([]domain.RawRow, 0, 64)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if row := toRawRow(header, record); row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// toRawRow returns nil for records with no content at all.
func toRawRow(header, record []string) domain.RawRow {
	row := make(domain.RawRow, len(header))
	empty := true
	for i, key := range header {
		if key == "" || i >= len(record) {
			continue
		}
		if _, dup := row[key]; dup {
			continue
		}
		row[key] = record[i]
		if strings.TrimSpace(record[i]) != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	return row
}
