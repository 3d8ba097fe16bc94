package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names recognised in the header row.
const (
	ColumnSubmitted = "submitted"
	ColumnProject   = "project"
	ColumnStart     = "start"
	ColumnEnd       = "end"
	ColumnNotes     = "notes"
)

var requiredColumns = []string{ColumnProject, ColumnStart}

// utf8BOM is prepended to the first header name by some spreadsheet exports.
const utf8BOM = "\ufeff"

// CSVSource implements RowSource for comma-separated timesheets.
// Lines starting with '#' are comments. The first non-comment line is the
// header and maps column names to positions.
type CSVSource struct {
	path   string
	reader io.Reader

	file    *os.File
	csv     *csv.Reader
	columns map[string]int
	width   int
}

// NewCSVSource creates a RowSource that reads the timesheet at path.
// The file is opened on the first call to Next.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// NewReaderSource creates a RowSource over an already open reader.
// name is used in diagnostics only.
func NewReaderSource(r io.Reader, name string) *CSVSource {
	return &CSVSource{path: name, reader: r}
}

// Next returns the next row in file order.
func (s *CSVSource) Next(ctx context.Context) (*RawRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.csv == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
		if err := s.readHeader(); err != nil {
			return nil, err
		}
	}

	fields, err := s.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, &RowError{Source: s.path, LineNum: perr.StartLine, Err: perr.Err}
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	line, _ := s.csv.FieldPos(0)

	if len(fields) != s.width {
		return nil, &RowError{
			Source:  s.path,
			LineNum: line,
			Err:     fmt.Errorf("found %d fields, header has %d", len(fields), s.width),
		}
	}

	return &RawRow{
		Submitted: s.field(fields, ColumnSubmitted),
		Project:   s.field(fields, ColumnProject),
		Start:     s.field(fields, ColumnStart),
		End:       s.field(fields, ColumnEnd),
		Notes:     s.field(fields, ColumnNotes),
		Source:    s.path,
		LineNum:   line,
	}, nil
}

// Close releases resources.
func (s *CSVSource) Close() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

func (s *CSVSource) open() error {
	r := s.reader
	if r == nil {
		f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
		if err != nil {
			return fmt.Errorf("opening timesheet %s: %w", s.path, err)
		}
		s.file = f
		r = f
	}

	s.csv = csv.NewReader(r)
	s.csv.Comment = '#'
	s.csv.FieldsPerRecord = -1
	s.csv.TrimLeadingSpace = true

	return nil
}

func (s *CSVSource) readHeader() error {
	header, err := s.csv.Read()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("reading header of %s: %w", s.path, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	s.columns = make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := s.columns[name]; dup {
			return fmt.Errorf("header of %s: duplicate column %q", s.path, name)
		}
		s.columns[name] = i
	}
	s.width = len(header)

	for _, col := range requiredColumns {
		if _, ok := s.columns[col]; !ok {
			return fmt.Errorf("header of %s: missing required column %q", s.path, col)
		}
	}

	return nil
}

func (s *CSVSource) field(fields []string, column string) string {
	i, ok := s.columns[column]
	if !ok {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// SliceSource is a RowSource over rows held in memory.
type SliceSource struct {
	rows  []RawRow
	index int
}

// NewSliceSource creates a RowSource that yields rows in order.
func NewSliceSource(rows []RawRow) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next returns the next row or io.EOF.
func (s *SliceSource) Next(ctx context.Context) (*RawRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.index >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.index]
	s.index++
	if row.LineNum == 0 {
		row.LineNum = s.index
	}
	return &row, nil
}

// Close is a no-op.
func (s *SliceSource) Close() error {
	return nil
}
