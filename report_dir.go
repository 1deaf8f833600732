package goequip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ReportExt is the file extension ParseReports looks for.
const ReportExt = ".txt"

// DefaultParseConcurrency bounds the number of files parsed at once.
const DefaultParseConcurrency = 8

// ParseReports opens every report in dir. Files that cannot be opened or
// have no readable status are skipped. The result is ordered by file name.
func ParseReports(ctx context.Context, dir string, opts ...Option) ([]*ReportParser, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report directory not found: %s", dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ReportExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	logger := zerolog.Ctx(ctx)
	parsed := make([]*ReportParser, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultParseConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := Open(path, opts...)
			if err != nil {
				logger.Debug().Err(err).Str("path", path).Msg("skipping report")
				return nil
			}
			if _, err := p.ResultOfOperation(); err != nil {
				logger.Debug().Err(err).Str("path", path).Msg("skipping report without status")
				return nil
			}
			parsed[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// os.ReadDir is sorted by name, so compacting keeps that order.
	reports := make([]*ReportParser, 0, len(parsed))
	for _, p := range parsed {
		if p != nil {
			reports = append(reports, p)
		}
	}
	return reports, nil
}
