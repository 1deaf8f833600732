package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/smallnest/goequip"
	"github.com/smallnest/goequip/render"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	// Keep a real user config out of the way.
	empty := t.TempDir()
	prev := configDirs
	configDirs = func() []string { return []string{empty} }
	t.Cleanup(func() { configDirs = prev })

	for _, env := range []string{"OPENAI_API_KEY", "OPENAI_API_BASE", "OPENAI_MODEL", "GOEQUIP_KEY_COLUMN", "GOEQUIP_FORMAT"} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}

	cmd := &cobra.Command{Use: "test"}
	SetupFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	cmd := newTestCommand(t)

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, wd, cfg.ReportsDir)
	assert.Equal(t, goequip.DefaultKeyColumn, cfg.KeyColumn)
	assert.Equal(t, goequip.DuplicateReject, cfg.Duplicates)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, XDGDataDir(), cfg.DBDir)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Empty(t, cfg.ConfigFile)
	assert.False(t, cfg.AssumeYes)
}

func TestLoadConfig_Flags(t *testing.T) {
	dir := t.TempDir()
	cmd := newTestCommand(t,
		"--reports-dir", dir,
		"--key-column", "Cell ID",
		"--duplicates", "last-wins",
		"--format", "JSON",
		"--yes",
		"--api-base", "http://localhost:9999/v1/",
	)

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ReportsDir)
	assert.Equal(t, "Cell ID", cfg.KeyColumn)
	assert.Equal(t, goequip.DuplicateLastWins, cfg.Duplicates)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.AssumeYes)
	assert.Equal(t, "http://localhost:9999/v1", cfg.APIBase)
	assert.Len(t, cfg.ParserOptions(), 2)
}

func TestLoadConfig_Env(t *testing.T) {
	cmd := newTestCommand(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOEQUIP_KEY_COLUMN", "Sector ID")

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "Sector ID", cfg.KeyColumn)
}

func TestLoadConfig_FlagBeatsEnv(t *testing.T) {
	cmd := newTestCommand(t, "--format", "yaml")
	t.Setenv("GOEQUIP_FORMAT", "markdown")

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goequip.yaml")
	content := "key-column: Cell Index\nformat: markdown\nduplicates: first-wins\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cmd := newTestCommand(t, "--config", path)
	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "Cell Index", cfg.KeyColumn)
	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, goequip.DuplicateFirstWins, cfg.Duplicates)
}

func TestLoadConfig_DefaultConfigDir(t *testing.T) {
	cmd := newTestCommand(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("listen: 0.0.0.0:9000\n"), 0644))
	configDirs = func() []string { return []string{dir} }

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
}

func TestLoadConfig_MissingExplicitConfig(t *testing.T) {
	cmd := newTestCommand(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig(cmd)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(newTestCommand(t, "--format", "pdf"))
	assert.ErrorIs(t, err, render.ErrUnknownFormat)

	_, err = LoadConfig(newTestCommand(t, "--duplicates", "merge"))
	assert.ErrorIs(t, err, goequip.ErrUnknownDuplicatePolicy)

	_, err = LoadConfig(newTestCommand(t, "--key-column", " "))
	assert.ErrorIs(t, err, ErrEmptyKeyColumn)
}

func TestValidate(t *testing.T) {
	valid := Config{KeyColumn: goequip.DefaultKeyColumn, Duplicates: goequip.DuplicateReject, Format: DefaultFormat}
	require.NoError(t, valid.Validate())

	for _, format := range Formats {
		c := valid
		c.Format = format
		require.NoError(t, c.Validate(), format)
		_, err := render.New(format, io.Discard)
		require.NoError(t, err, format)
	}

	c := valid
	c.Duplicates = "merge"
	assert.ErrorIs(t, c.Validate(), goequip.ErrUnknownDuplicatePolicy)

	c = valid
	c.Format = "pdf"
	err := c.Validate()
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
	_, renderErr := render.New(c.Format, io.Discard)
	assert.ErrorIs(t, renderErr, render.ErrUnknownFormat)
}
