package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// FileSource implements RowSource via registered format readers.
type FileSource struct {
	registry *Registry
	logger   *slog.Logger
}

var _ ports.RowSource = (*FileSource)(nil)

// NewFileSource wires a reader registry; a nil registry gets the defaults.
func NewFileSource(reg *Registry, log *slog.Logger) *FileSource {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &FileSource{
		registry: reg,
		logger:   log,
	}
}

// ReadFile picks a reader by extension. Any failure is a FileParseError.
func (s *FileSource) ReadFile(ctx context.Context, path string) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.FileParseError{File: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := s.read(ctx, f, FormatFromPath(path))
	if err != nil {
		return nil, &domain.FileParseError{File: path, Err: err}
	}
	s.debug("file read", "file", path, "rows", len(rows))
	return rows, nil
}

// ReadStream reads an already opened export, e.g. an uploaded file.
func (s *FileSource) ReadStream(ctx context.Context, r io.Reader, format string) ([]domain.RawRow, error) {
	rows, err := s.read(ctx, r, format)
	if err != nil {
		return nil, &domain.FileParseError{Err: err}
	}
	s.debug("stream read", "format", format, "rows", len(rows))
	return rows, nil
}

func (s *FileSource) read(ctx context.Context, r io.Reader, format string) ([]domain.RawRow, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("reader registry is not configured")
	}
	reader, err := s.registry.Resolve(format)
	if err != nil {
		return nil, err
	}
	return reader.Read(ctx, r)
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
