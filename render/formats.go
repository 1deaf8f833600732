package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/markdown"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// TextWriter prints an aligned plain-text table.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

func (w *TextWriter) Write(view *View) error {
	if _, err := fmt.Fprintf(w.output, "Element: %s\nStatus:  %s\n\n", view.Element, view.Status); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(view.header(), "\t"))
	for _, row := range view.rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// JSONWriter outputs indented JSON.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

func (w *JSONWriter) Write(view *View) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to format output as JSON: %w", err)
	}
	return nil
}

// YAMLWriter outputs YAML.
type YAMLWriter struct {
	baseWriter
}

// NewYAMLWriter creates a YAMLWriter that outputs to the given writer.
func NewYAMLWriter(output io.Writer) *YAMLWriter {
	return &YAMLWriter{baseWriter: newBaseWriter(output)}
}

func (w *YAMLWriter) Write(view *View) error {
	enc := yaml.NewEncoder(w.output)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to format output as YAML: %w", err)
	}
	return enc.Close()
}

// MarkdownWriter outputs a GitHub flavoured Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

func (w *MarkdownWriter) Write(view *View) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Report " + view.Element)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Element", view.Element},
			{"Status", view.Status},
			{"Records", fmt.Sprint(view.Table.Len())},
		},
	})
	md.PlainText("")

	md.H2("Cells")
	md.PlainText("")
	if view.Table.Len() == 0 {
		md.PlainText("No records.")
	} else {
		md.Table(markdown.TableSet{
			Header: view.header(),
			Rows:   view.rows(),
		})
	}
	md.PlainText("")

	return md.Build()
}

// xlsxInfoSheet holds element and status next to the data sheet.
const xlsxInfoSheet = "Info"

// XLSXWriter outputs an Excel workbook with one sheet per report.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

func (w *XLSXWriter) Write(view *View) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(view.Element)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := append([][]string{view.header()}, view.rows()...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(xlsxInfoSheet); err != nil {
		return err
	}
	for i, pair := range [][2]string{{"Element", view.Element}, {"Status", view.Status}, {"Source", view.Source}} {
		if err := f.SetSheetRow(xlsxInfoSheet, fmt.Sprintf("A%d", i+1), &[]string{pair[0], pair[1]}); err != nil {
			return err
		}
	}

	return f.Write(w.output)
}

// SheetName turns an element name into a valid worksheet name.
func SheetName(element string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, element)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	// Sheet names are case-insensitive in a workbook.
	if name == "" || strings.EqualFold(name, xlsxInfoSheet) {
		return "Report"
	}
	return name
}
