package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/helpers/pkg/file"
)

// Store keeps episode results.
type Store interface {
	Append(ctx context.Context, r Result) error
	List(ctx context.Context) ([]Result, error)
}

// FileStore appends results to a text file, one line each.
type FileStore struct {
	Path string
}

func (s *FileStore) Append(_ context.Context, r Result) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.Path, err)
	}
	if _, err := fmt.Fprintln(f, r.String()); err != nil {
		f.Close()
		return fmt.Errorf("store: write %s: %w", s.Path, err)
	}
	return f.Close()
}

// List returns every parseable line. Malformed lines are logged and skipped.
func (s *FileStore) List(_ context.Context) ([]Result, error) {
	if !file.Exists(s.Path) {
		return nil, nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", s.Path, err)
	}
	defer f.Close()

	var results []Result
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if scanner.Text() == "" {
			continue
		}
		r, err := ParseLine(scanner.Text())
		if err != nil {
			log.Warning(fmt.Sprintf("%s:%d: %v", s.Path, line, err))
			continue
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.Path, err)
	}
	return results, nil
}

// Multi writes to every store and lists from the first.
type Multi []Store

func (m Multi) Append(ctx context.Context, r Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) List(ctx context.Context) ([]Result, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].List(ctx)
}
