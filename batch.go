package pdx

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
)

// Result is the outcome of parsing one file of a batch.
type Result struct {
	Path string
	Doc  *Document
	Err  error
}

// ParseFiles parses paths concurrently with at most workers files in flight
// (NumCPU when workers <= 0). Results come back in the order of paths. Each
// file fails on its own; once ctx is done, files not yet started get ctx.Err().
func (p *Parser) ParseFiles(ctx context.Context, paths []string, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		results[i].Path = path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			doc, err := p.ParseFile(path)
			results[i].Doc = doc
			results[i].Err = err
		}(i, path)
	}

	wg.Wait()
	return results
}

// ParseDir parses the files of dir matching pattern (for example "*.txt"),
// sorted by name, which is the order the game loads them.
func (p *Parser) ParseDir(ctx context.Context, dir, pattern string, workers int) ([]Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(paths)
	return p.ParseFiles(ctx, paths, workers), nil
}
