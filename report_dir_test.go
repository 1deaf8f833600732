package goequip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReports(t *testing.T) {
	dir := t.TempDir()

	good := buildReport(testHeader, "1  NodeA  foo  bar")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_site.txt"), []byte(good), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_site.TXT"), []byte(good), 0644))
	// Too short to have a status row.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("+++ X\n"), 0644))
	// Wrong extension.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(good), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0755))

	reports, err := ParseReports(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, filepath.Join(dir, "a_site.TXT"), reports[0].Path)
	assert.Equal(t, filepath.Join(dir, "b_site.txt"), reports[1].Path)
	assert.Equal(t, "ENODEB_01", reports[0].ElementName)
}

func TestParseReports_Options(t *testing.T) {
	dir := t.TempDir()
	content := buildReport("Cell ID  Cell Name", "7  NodeA")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.txt"), []byte(content), 0644))

	reports, err := ParseReports(context.Background(), dir, WithKeyColumn("Cell ID"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	table, err := reports[0].ToTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, table.Keys)
}

func TestParseReports_NotADirectory(t *testing.T) {
	_, err := ParseReports(context.Background(), "/non/existent/path")
	assert.ErrorContains(t, err, "report directory not found")

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = ParseReports(context.Background(), file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestParseReports_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.txt"), []byte(buildReport(testHeader)), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseReports(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
