package goequip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *RecordTable {
	t.Helper()
	table := newRecordTable("Local Cell ID", []string{"Cell Name", "Column_2", "Column_3"})
	require.NoError(t, table.put("1", Record{"Cell Name": "NodeA", "Column_2": "foo", "Column_3": "bar"}, DuplicateReject))
	require.NoError(t, table.put("2", Record{"Cell Name": "NodeB", "Column_2": "baz", "Column_3": "qux"}, DuplicateReject))
	return table
}

func TestRecordTable_FormatCell(t *testing.T) {
	table := sampleTable(t)

	s, err := table.FormatCell("Column_3", "1")
	require.NoError(t, err)
	assert.Equal(t, "Column_3: id 1 -> bar", s)
}

func TestRecordTable_Errors(t *testing.T) {
	table := sampleTable(t)

	_, err := table.Column("Missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = table.FormatCell("Column_3", "999")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.EqualError(t, err, `invalid Local Cell ID: "999"`)

	_, err = table.Row("999")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestRecordTable_ColumnKeepsKeyOrder(t *testing.T) {
	table := sampleTable(t)

	values, err := table.Column("Column_2")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "baz"}, values)
	assert.True(t, table.HasKey("2"))
	assert.False(t, table.HasColumn("Local Cell ID"))
}

func TestParseDuplicatePolicy(t *testing.T) {
	for in, want := range map[string]DuplicatePolicy{
		"":           DuplicateReject,
		"reject":     DuplicateReject,
		"Last-Wins":  DuplicateLastWins,
		"first-wins": DuplicateFirstWins,
	} {
		got, err := ParseDuplicatePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuplicatePolicy("merge")
	assert.ErrorIs(t, err, ErrUnknownDuplicatePolicy)
	assert.ErrorContains(t, err, `unknown duplicate policy "merge"`)
}
