package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"RecipeScanner/internal/domain"
)

// Reader captures a single export format implementation (CSV, XLSX, etc.).
type Reader interface {
	Format() string
	Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error)
}

// Registry keeps a mapping from format names to their readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]Reader{}}
}

// DefaultRegistry returns a registry with the CSV and XLSX readers.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(NewCSVReader())
	reg.Register(NewXLSXReader())
	return reg
}

// Register adds or replaces a reader implementation.
func (r *Registry) Register(reader Reader) {
	if r.readers == nil {
		r.readers = map[string]Reader{}
	}
	r.readers[reader.Format()] = reader
}

// Resolve returns a reader by format or an error if it is absent.
func (r *Registry) Resolve(format string) (Reader, error) {
	if reader, ok := r.readers[normalizeFormat(format)]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("no reader registered for format %q", format)
}

// FormatFromPath derives the format name from a file extension.
func FormatFromPath(path string) string {
	return normalizeFormat(filepath.Ext(path))
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
