package goequip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTable_Stats(t *testing.T) {
	p, err := Open(filepath.Join("testdata", "enodeb_01.txt"))
	require.NoError(t, err)
	table, err := p.ToTable()
	require.NoError(t, err)

	cs, err := table.Stats("Column_2")
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Count)
	assert.Equal(t, 1, cs.Skipped)
	assert.Equal(t, 12.0, cs.Min)
	assert.Equal(t, 30.0, cs.Max)
	assert.Equal(t, 21.0, cs.Mean)
	assert.Equal(t, 21.0, cs.Median)
	assert.InDelta(t, 9.0, cs.StdDev, 1e-9)
}

func TestRecordTable_StatsErrors(t *testing.T) {
	table := sampleTable(t)

	cs, err := table.Stats("Cell Name")
	assert.ErrorIs(t, err, ErrNoNumericValues)
	assert.Equal(t, 2, cs.Skipped)

	_, err = table.Stats("Missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
