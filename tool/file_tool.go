package tool

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrAborted is returned when a confirmation prompt was declined.
	ErrAborted = errors.New("operation aborted")
	// ErrNotExist is returned when the target file is missing.
	ErrNotExist = errors.New("file does not exist")
)

// WriteMode selects between appending and truncating writes.
type WriteMode string

const (
	ModeAppend    WriteMode = "a"
	ModeOverwrite WriteMode = "w"
)

// ParseWriteMode accepts "a"/"append" and "w"/"overwrite".
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(s) {
	case "a", "append", "":
		return ModeAppend, nil
	case "w", "overwrite":
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown write mode %q", s)
}

// Readable returns the content of a file.
type Readable interface {
	Read() (string, error)
}

// Writable writes content to a file.
type Writable interface {
	Write(content string, mode WriteMode) error
}

// Deletable removes a file.
type Deletable interface {
	Delete() error
}

type fileConfig struct {
	logger  zerolog.Logger
	confirm Confirmer
}

// FileOption configures FileReader, FileWriter and FileDeleter.
type FileOption func(*fileConfig)

// WithLogger sets the logger used for informational messages.
func WithLogger(l zerolog.Logger) FileOption {
	return func(c *fileConfig) { c.logger = l }
}

// WithConfirmer sets who is asked before overwriting or deleting.
// Without one, every prompt is answered "no".
func WithConfirmer(c Confirmer) FileOption {
	return func(fc *fileConfig) { fc.confirm = c }
}

func newFileConfig(opts []FileOption) fileConfig {
	cfg := fileConfig{logger: zerolog.Nop(), confirm: StaticConfirmer(ChoiceNo)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// target is the file shared by all capabilities.
type target struct {
	path string
	fileConfig
}

func (t target) name() string { return filepath.Base(t.path) }

func (t target) parent() string {
	abs, err := filepath.Abs(t.path)
	if err != nil {
		return filepath.Dir(t.path)
	}
	return filepath.Base(filepath.Dir(abs))
}

func (t target) exists() (bool, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (t target) String() string { return t.path }

// FileReader is a Readable file.
type FileReader struct{ target }

// NewFileReader creates a FileReader for path.
func NewFileReader(path string, opts ...FileOption) *FileReader {
	return &FileReader{target{path: path, fileConfig: newFileConfig(opts)}}
}

func (r *FileReader) Read() (string, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", r.path, ErrNotExist)
		}
		return "", fmt.Errorf("failed to read file '%s': %w", r.path, err)
	}
	return string(content), nil
}

// FileWriter is a Writable file. Overwriting an existing file goes through
// the Confirmer, which may also turn the write into an append.
type FileWriter struct{ target }

// NewFileWriter creates a FileWriter for path.
func NewFileWriter(path string, opts ...FileOption) *FileWriter {
	return &FileWriter{target{path: path, fileConfig: newFileConfig(opts)}}
}

// Write stores content followed by a newline.
func (w *FileWriter) Write(content string, mode WriteMode) error {
	if mode != ModeAppend && mode != ModeOverwrite {
		return fmt.Errorf("unknown write mode %q", mode)
	}
	exists, err := w.exists()
	if err != nil {
		return err
	}

	switch {
	case exists && mode == ModeOverwrite:
		prompt := fmt.Sprintf("%s is an existing file in %s directory. Are you sure you want to overwrite?", w.name(), w.parent())
		choice, err := w.confirm.Confirm(prompt, []Choice{ChoiceYes, ChoiceAppend, ChoiceNo})
		if err != nil {
			return err
		}
		switch choice {
		case ChoiceYes:
			return w.write(content, ModeOverwrite)
		case ChoiceAppend:
			return w.write(content, ModeAppend)
		default:
			return ErrAborted
		}
	case !exists && mode == ModeAppend:
		w.logger.Info().Str("file", w.name()).Str("dir", w.parent()).Msg("file does not exist, a new file will be created")
	}
	return w.write(content, mode)
}

func (w *FileWriter) write(content string, mode WriteMode) error {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == ModeOverwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(w.path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to write to file '%s': %w", w.path, err)
	}
	if _, err := fmt.Fprintln(f, content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write to file '%s': %w", w.path, err)
	}
	return f.Close()
}

// FileDeleter is a Deletable file.
type FileDeleter struct{ target }

// NewFileDeleter creates a FileDeleter for path.
func NewFileDeleter(path string, opts ...FileOption) *FileDeleter {
	return &FileDeleter{target{path: path, fileConfig: newFileConfig(opts)}}
}

// Delete removes the file after confirmation.
func (d *FileDeleter) Delete() error {
	exists, err := d.exists()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s does not exist in %s: %w", d.name(), d.parent(), ErrNotExist)
	}

	prompt := fmt.Sprintf("This action will completely remove %s. Do you want to proceed?", d.name())
	choice, err := d.confirm.Confirm(prompt, []Choice{ChoiceYes, ChoiceNo})
	if err != nil {
		return err
	}
	if choice != ChoiceYes {
		return ErrAborted
	}
	if err := os.Remove(d.path); err != nil {
		return fmt.Errorf("failed to delete '%s': %w", d.path, err)
	}
	d.logger.Info().Str("file", d.path).Msg("file deleted")
	return nil
}

// Size returns the size of the file at path in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("cannot get size of %s: %w", path, ErrNotExist)
		}
		return 0, err
	}
	return info.Size(), nil
}

// FromListFile reads file names from path, one per line, skipping blanks.
func FromListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list file %s: %w", path, ErrNotExist)
		}
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return names, nil
}
