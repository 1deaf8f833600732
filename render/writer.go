// Package render writes parsed equipment reports in several output formats.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smallnest/goequip"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// View is everything a writer needs from one report.
type View struct {
	Element string               `json:"element" yaml:"element"`
	Status  string               `json:"status" yaml:"status"`
	Source  string               `json:"source,omitempty" yaml:"source,omitempty"`
	Table   *goequip.RecordTable `json:"table" yaml:"table"`
}

// NewView reads status and table from p.
func NewView(p *goequip.ReportParser) (*View, error) {
	status, err := p.ResultOfOperation()
	if err != nil {
		return nil, err
	}
	table, err := p.ToTable()
	if err != nil {
		return nil, err
	}
	return &View{
		Element: p.ElementName,
		Status:  status,
		Source:  p.Path,
		Table:   table,
	}, nil
}

// header returns the key column followed by the value columns.
func (v *View) header() []string {
	return append([]string{v.Table.KeyColumn}, v.Table.Columns...)
}

// rows returns the table as string rows in key order, without header.
func (v *View) rows() [][]string {
	rows := make([][]string, 0, len(v.Table.Keys))
	for _, key := range v.Table.Keys {
		rec := v.Table.Records[key]
		row := make([]string, 0, len(v.Table.Columns)+1)
		row = append(row, key)
		for _, col := range v.Table.Columns {
			row = append(row, rec[col])
		}
		rows = append(rows, row)
	}
	return rows
}

// Writer outputs a View to its destination.
type Writer interface {
	Write(view *View) error
}

// baseWriter provides common functionality for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// New returns the writer for format.
func New(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextWriter(output), nil
	case "json":
		return NewJSONWriter(output), nil
	case "yaml":
		return NewYAMLWriter(output), nil
	case "markdown", "md":
		return NewMarkdownWriter(output), nil
	case "xlsx":
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
