package goequip

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DuplicatePolicy decides what ToTable does when a key value repeats.
type DuplicatePolicy string

const (
	// DuplicateReject fails with a DuplicateKeyError.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateLastWins keeps the last row seen for a key.
	DuplicateLastWins DuplicatePolicy = "last-wins"
	// DuplicateFirstWins keeps the first row seen for a key.
	DuplicateFirstWins DuplicatePolicy = "first-wins"
)

// ErrUnknownDuplicatePolicy is returned for a policy name ParseDuplicatePolicy does not know.
var ErrUnknownDuplicatePolicy = errors.New("unknown duplicate policy")

// ParseDuplicatePolicy converts a flag or config value into a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DuplicateReject, DuplicateLastWins, DuplicateFirstWins:
		return p, nil
	case "":
		return DuplicateReject, nil
	default:
		return "", fmt.Errorf("%w %q (want reject, last-wins or first-wins)", ErrUnknownDuplicatePolicy, s)
	}
}

// Record maps a column name to the value of one data row.
type Record map[string]string

// RecordTable is the tabular section of a report keyed by KeyColumn.
type RecordTable struct {
	KeyColumn string            `json:"key_column" yaml:"key_column"`
	Columns   []string          `json:"columns" yaml:"columns"`
	Keys      []string          `json:"keys" yaml:"keys"`
	Records   map[string]Record `json:"records" yaml:"records"`
}

func newRecordTable(keyColumn string, columns []string) *RecordTable {
	return &RecordTable{
		KeyColumn: keyColumn,
		Columns:   columns,
		Keys:      []string{},
		Records:   make(map[string]Record),
	}
}

// put stores rec under key according to policy.
func (t *RecordTable) put(key string, rec Record, policy DuplicatePolicy) error {
	if _, exists := t.Records[key]; exists {
		switch policy {
		case DuplicateFirstWins:
			return nil
		case DuplicateLastWins:
			t.Records[key] = rec
			return nil
		default:
			return &DuplicateKeyError{KeyColumn: t.KeyColumn, Key: key}
		}
	}
	t.Keys = append(t.Keys, key)
	t.Records[key] = rec
	return nil
}

// HasColumn reports whether name is one of the value columns.
func (t *RecordTable) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// HasKey reports whether key is present in the table.
func (t *RecordTable) HasKey(key string) bool {
	_, ok := t.Records[key]
	return ok
}

// Len returns the number of records.
func (t *RecordTable) Len() int { return len(t.Keys) }

// Row returns the record stored under key.
func (t *RecordTable) Row(key string) (Record, error) {
	rec, ok := t.Records[key]
	if !ok {
		return nil, &InvalidKeyError{KeyColumn: t.KeyColumn, Key: key}
	}
	return rec, nil
}

// Column returns the values of a column in key order.
func (t *RecordTable) Column(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, &ColumnNotFoundError{Column: name}
	}
	values := make([]string, 0, len(t.Keys))
	for _, key := range t.Keys {
		values = append(values, t.Records[key][name])
	}
	return values, nil
}

// Value returns a single cell. The column is checked before the key.
func (t *RecordTable) Value(column, key string) (string, error) {
	if !t.HasColumn(column) {
		return "", &ColumnNotFoundError{Column: column}
	}
	rec, err := t.Row(key)
	if err != nil {
		return "", err
	}
	return rec[column], nil
}

// FormatCell returns a cell as "<column>: id <key> -> <value>".
func (t *RecordTable) FormatCell(column, key string) (string, error) {
	v, err := t.Value(column, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: id %s -> %s", column, key, v), nil
}
