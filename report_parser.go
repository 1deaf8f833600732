package goequip

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// Report layout. Offsets are fixed by the equipment dump format:
//
//	row 0         "+++  <element>  <date> <time>"
//	row 3         "RETCODE = 0  Operation succeeded."
//	raw line 7    "Local Cell ID  Cell Name  ..."   (fields split by two spaces)
//	rows 7..N-2   one data record per row
//	last 2 rows   result count and end marker
//
// "line" indexes count every line of the file; "row" indexes count only
// non-blank lines. The header is located by line, the data section by row.
const (
	ElementNameToken = 1 // token of the first non-blank row
	StatusRow        = 3
	StatusTokens     = 2
	HeaderLine       = 7
	HeaderDelimiter  = "  "
	DataRowStart     = 7
	FooterRows       = 2
	DefaultKeyColumn = "Local Cell ID"
)

// Row is one non-blank line of a report split on whitespace.
type Row []string

type options struct {
	keyColumn  string
	duplicates DuplicatePolicy
}

// Option configures a ReportParser.
type Option func(*options)

// WithKeyColumn sets the header used as table key.
func WithKeyColumn(name string) Option {
	return func(o *options) {
		if name != "" {
			o.keyColumn = name
		}
	}
}

// WithDuplicatePolicy sets how repeated keys are handled by ToTable.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		if p != "" {
			o.duplicates = p
		}
	}
}

// ReportParser reads a fixed-layout equipment report. Nothing derived from
// the file is cached: every call re-reads it, except ElementName which is
// taken once in Open.
type ReportParser struct {
	Path        string
	ElementName string

	opts options
}

// Open binds a parser to path. It fails with *NotFoundError if the file does
// not exist.
func Open(path string, opts ...Option) (*ReportParser, error) {
	p := &ReportParser{
		Path: path,
		opts: options{keyColumn: DefaultKeyColumn, duplicates: DuplicateReject},
	}
	for _, opt := range opts {
		opt(&p.opts)
	}

	rows, err := p.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &RowIndexError{What: "row", Index: 0, Len: 0}
	}
	if first := rows[0]; len(first) <= ElementNameToken {
		return nil, &RowIndexError{What: "token", Index: ElementNameToken, Len: len(first)}
	}
	p.ElementName = rows[0][ElementNameToken]

	return p, nil
}

// KeyColumn returns the header name used as table key.
func (p *ReportParser) KeyColumn() string { return p.opts.keyColumn }

// ReadRaw returns the full file content.
func (p *ReportParser) ReadRaw() (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: p.Path, Err: err}
		}
		return "", fmt.Errorf("failed to read report %s: %w", p.Path, err)
	}
	return string(data), nil
}

func (p *ReportParser) lines() ([]string, error) {
	content, err := p.ReadRaw()
	if err != nil {
		return nil, err
	}
	return strings.Split(content, "\n"), nil
}

// Rows returns every non-blank line split on whitespace.
func (p *ReportParser) Rows() ([]Row, error) {
	lines, err := p.lines()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			rows = append(rows, fields)
		}
	}
	return rows, nil
}

// Line returns raw line i, counting blank lines too.
func (p *ReportParser) Line(i int) (string, error) {
	lines, err := p.lines()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(lines) {
		return "", &RowIndexError{What: "line", Index: i, Len: len(lines)}
	}
	return lines[i], nil
}

// ResultOfOperation returns the last two tokens of the status row, e.g.
// "Operation succeeded.".
func (p *ReportParser) ResultOfOperation() (string, error) {
	rows, err := p.Rows()
	if err != nil {
		return "", err
	}
	if len(rows) <= StatusRow {
		return "", &RowIndexError{What: "row", Index: StatusRow, Len: len(rows)}
	}
	row := rows[StatusRow]
	start := max(len(row)-StatusTokens, 0)
	return strings.Join(row[start:], " "), nil
}

func parseHeader(line string) []string {
	var headers []string
	for _, field := range strings.Split(line, HeaderDelimiter) {
		if h := strings.TrimSpace(field); h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// ToTable builds the record table from the header line and the data rows.
func (p *ReportParser) ToTable() (*RecordTable, error) {
	headerLine, err := p.Line(HeaderLine)
	if err != nil {
		return nil, err
	}
	headers := parseHeader(headerLine)
	if len(headers) == 0 {
		return nil, ErrEmptyHeader
	}

	keyColumn := p.opts.keyColumn
	keyIdx := slices.Index(headers, keyColumn)
	if keyIdx < 0 {
		return nil, &ColumnNotFoundError{Column: keyColumn}
	}
	columns := slices.Delete(slices.Clone(headers), keyIdx, keyIdx+1)

	rows, err := p.Rows()
	if err != nil {
		return nil, err
	}

	table := newRecordTable(keyColumn, columns)
	for i := DataRowStart; i < len(rows)-FooterRows; i++ {
		row := rows[i]
		if len(row) != len(headers) {
			return nil, &ShapeMismatchError{Row: i, Got: len(row), Headers: len(headers)}
		}
		rec := make(Record, len(columns))
		for j, h := range headers {
			if j != keyIdx {
				rec[h] = row[j]
			}
		}
		if err := table.put(row[keyIdx], rec, p.opts.duplicates); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// GetColumn builds a fresh table and returns one of its columns.
func (p *ReportParser) GetColumn(column string) ([]string, error) {
	table, err := p.ToTable()
	if err != nil {
		return nil, err
	}
	return table.Column(column)
}

// GetCell builds a fresh table and returns "<column>: id <key> -> <value>".
func (p *ReportParser) GetCell(column, key string) (string, error) {
	table, err := p.ToTable()
	if err != nil {
		return "", err
	}
	return table.FormatCell(column, key)
}

// Describe summarises the report by element name and status.
func (p *ReportParser) Describe() (string, error) {
	status, err := p.ResultOfOperation()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Report [%s] with status: %s", p.ElementName, status), nil
}

func (p *ReportParser) String() string {
	s, err := p.Describe()
	if err != nil {
		return fmt.Sprintf("Report [%s] with status: unavailable (%v)", p.ElementName, err)
	}
	return s
}
