package project

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/models"
	"golang.org/x/sync/errgroup"
)

// WriteResult lists what WriteArtifacts did.
type WriteResult struct {
	Written   []string
	Unchanged []string
}

// WriteArtifacts persists artifacts concurrently, creating directories as
// needed. Files whose content already matches are left untouched.
func WriteArtifacts(ctx context.Context, artifacts []models.GeneratedArtifact, workers int) (WriteResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu     sync.Mutex
		result WriteResult
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, a := range artifacts {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			changed, err := writeArtifact(a)
			if err != nil {
				return err
			}

			mu.Lock()
			if changed {
				result.Written = append(result.Written, a.FilePath)
			} else {
				result.Unchanged = append(result.Unchanged, a.FilePath)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}
	sort.Strings(result.Written)
	sort.Strings(result.Unchanged)
	return result, nil
}

func writeArtifact(a models.GeneratedArtifact) (bool, error) {
	if existing, err := os.ReadFile(a.FilePath); err == nil && bytes.Equal(existing, []byte(a.Content)) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.FilePath), 0o755); err != nil {
		return false, errors.NewOutputError(fmt.Sprintf("failed to create directory for %s", a.FilePath), err)
	}
	if err := os.WriteFile(a.FilePath, []byte(a.Content), 0o644); err != nil {
		return false, errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", a.FilePath), err)
	}
	return true, nil
}

// WriteSource overwrites a source file in place, keeping its permissions.
func WriteSource(src models.SourceFile) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(src.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(src.Path, []byte(src.Content), mode); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", src.Path), err)
	}
	return nil
}
