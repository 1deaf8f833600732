package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/smallnest/goequip"
	"github.com/smallnest/goequip/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// AppName is used for XDG directory paths.
	AppName = "goequip"
	// EnvPrefix prefixes every environment override, e.g. GOEQUIP_KEY_COLUMN.
	EnvPrefix = "GOEQUIP"

	DefaultFormat     = "text"
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultModel      = "gpt-4o"
)

// Formats lists the output formats understood by the render package.
var Formats = []string{"text", "json", "yaml", "markdown", "xlsx"}

// ErrEmptyKeyColumn is returned by Validate for a blank key column. Unknown
// formats and duplicate policies report render.ErrUnknownFormat and
// goequip.ErrUnknownDuplicatePolicy.
var ErrEmptyKeyColumn = errors.New("key column must not be empty")

// configDirs is where LoadConfig looks for config.yaml when --config is not given.
var configDirs = func() []string { return []string{XDGConfigDir()} }

// Config holds the application configuration
type Config struct {
	ConfigFile string
	ReportsDir string
	KeyColumn  string
	Duplicates goequip.DuplicatePolicy
	Format     string
	DBDir      string
	ListenAddr string
	AssumeYes  bool
	Model      string
	APIBase    string
	APIKey     string
	Verbose    bool
}

// ParserOptions returns the goequip options implied by the config.
func (c *Config) ParserOptions() []goequip.Option {
	return []goequip.Option{
		goequip.WithKeyColumn(c.KeyColumn),
		goequip.WithDuplicatePolicy(c.Duplicates),
	}
}

// Validate checks the values LoadConfig could not normalise.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeyColumn) == "" {
		return ErrEmptyKeyColumn
	}
	if _, err := goequip.ParseDuplicatePolicy(string(c.Duplicates)); err != nil {
		return err
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: %q (want one of %s)", render.ErrUnknownFormat, c.Format, strings.Join(Formats, ", "))
	}
	return nil
}

// XDGDataDir returns the default directory of the snapshot database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory searched for config.yaml.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// LoadConfig resolves configuration from flags, environment variables, an
// optional .env file and an optional YAML config file, in that order of precedence.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	// .env never overrides variables already set in the environment.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetDefault("reports-dir", ".")
	v.SetDefault("key-column", goequip.DefaultKeyColumn)
	v.SetDefault("duplicates", string(goequip.DuplicateReject))
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("db-dir", XDGDataDir())
	v.SetDefault("listen", DefaultListenAddr)
	v.SetDefault("model", DefaultModel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The OpenAI variables are honoured as well, like the upstream SDKs do.
	for key, env := range map[string]string{
		"api-key":  "OPENAI_API_KEY",
		"api-base": "OPENAI_API_BASE",
		"model":    "OPENAI_MODEL",
	} {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := v.BindEnv(key, envKey, env); err != nil {
			return nil, err
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	configFile, err := readConfigFile(v, v.GetString("config"))
	if err != nil {
		return nil, err
	}

	duplicates, err := goequip.ParseDuplicatePolicy(v.GetString("duplicates"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigFile: configFile,
		ReportsDir: v.GetString("reports-dir"),
		KeyColumn:  v.GetString("key-column"),
		Duplicates: duplicates,
		Format:     strings.ToLower(v.GetString("format")),
		DBDir:      v.GetString("db-dir"),
		ListenAddr: v.GetString("listen"),
		AssumeYes:  v.GetBool("yes"),
		Model:      v.GetString("model"),
		APIBase:    strings.TrimSuffix(v.GetString("api-base"), "/"),
		APIKey:     v.GetString("api-key"),
		Verbose:    v.GetBool("verbose"),
	}

	// Resolve ReportsDir to absolute path
	absReportsDir, err := filepath.Abs(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	cfg.ReportsDir = absReportsDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile merges a YAML config file into v. An explicit path must
// exist; the default location is optional. It returns the file used, if any.
func readConfigFile(v *viper.Viper, explicit string) (string, error) {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
		return explicit, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range configDirs() {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// SetupFlags registers the flags with the command
func SetupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (default: $XDG_CONFIG_HOME/goequip/config.yaml)")
	flags.StringP("reports-dir", "d", ".", "Directory holding equipment reports")
	flags.StringP("key-column", "k", goequip.DefaultKeyColumn, "Header used as table key")
	flags.String("duplicates", string(goequip.DuplicateReject), "Duplicate key policy: reject, last-wins or first-wins")
	flags.StringP("format", "f", DefaultFormat, "Output format: "+strings.Join(Formats, ", "))
	flags.String("db-dir", "", "Directory of the snapshot database (default: XDG data dir)")
	flags.String("listen", DefaultListenAddr, "Listen address of the HTTP API")
	flags.BoolP("yes", "y", false, "Answer yes to every confirmation prompt")
	flags.StringP("model", "m", "", "OpenAI-compatible model name")
	flags.StringP("api-base", "b", "", "OpenAI-compatible API base URL")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
}
