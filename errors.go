package goequip

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches one of these with errors.Is.
var (
	ErrNotFound       = errors.New("report not found")
	ErrShapeMismatch  = errors.New("row does not match header shape")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidKey     = errors.New("invalid key")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrRowIndex       = errors.New("row index out of range")
	ErrEmptyHeader    = errors.New("header row has no columns")
)

// NotFoundError reports a source file missing at read time.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("report not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.Err }

// ShapeMismatchError reports a data row whose token count differs from the header.
type ShapeMismatchError struct {
	Row     int // non-blank row index
	Got     int
	Headers int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("row %d has %d fields, header has %d columns", e.Row, e.Got, e.Headers)
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// ColumnNotFoundError reports a column name absent from the headers.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %q", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }

// InvalidKeyError reports a key absent from the table's key set.
type InvalidKeyError struct {
	KeyColumn string
	Key       string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.KeyColumn, e.Key)
}

func (e *InvalidKeyError) Is(target error) bool { return target == ErrInvalidKey }

// DuplicateKeyError is returned under DuplicateReject when a key repeats.
type DuplicateKeyError struct {
	KeyColumn string
	Key       string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %q", e.KeyColumn, e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// RowIndexError reports access past the end of the report.
type RowIndexError struct {
	What  string // "line", "row" or "token"
	Index int
	Len   int
}

func (e *RowIndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range (have %d)", e.What, e.Index, e.Len)
}

func (e *RowIndexError) Is(target error) bool { return target == ErrRowIndex }
