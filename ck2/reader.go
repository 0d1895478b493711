// Package ck2 reads the files of a Crusader Kings II mod into typed records:
// landed titles, province histories, climate, map definitions, traits and
// custom modifiers. Every script file goes through a pdx.Parser; this
// package only walks the resulting documents.
package ck2

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/modconv/pdx"
)

// Reader reads mod files with one parser. The zero value is usable.
type Reader struct {
	Parser  *pdx.Parser
	Logger  *slog.Logger
	Workers int

	// CheckModifiers rejects trait keys that are neither trait fields,
	// built-in modifiers nor custom modifiers of the catalog.
	CheckModifiers bool
}

// NewReader creates a Reader around p, logging to logger.
func NewReader(p *pdx.Parser, logger *slog.Logger) *Reader {
	return &Reader{Parser: p, Logger: logger, Workers: runtime.NumCPU()}
}

func (r *Reader) parser() *pdx.Parser {
	if r.Parser == nil {
		return pdx.NewParser()
	}
	return r.Parser
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// parseDir parses every .txt file of dir and returns the documents keyed by
// file stem, plus the joined errors of the files that failed.
func (r *Reader) parseDir(ctx context.Context, dir string) (map[string]*pdx.Document, []string, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s: %w", dir, pdx.ErrNotFound)
		}
		return nil, nil, err
	}

	results, err := r.parser().ParseDir(ctx, dir, "*.txt", r.Workers)
	if err != nil {
		return nil, nil, err
	}

	docs := make(map[string]*pdx.Document, len(results))
	stems := make([]string, 0, len(results))
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			r.logger().Warn("ck2: parse failed", "path", res.Path, "error", res.Err)
			errs = append(errs, res.Err)
			continue
		}
		stem := fileStem(res.Path)
		docs[stem] = res.Doc
		stems = append(stems, stem)
	}
	return docs, stems, errors.Join(errs...)
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
