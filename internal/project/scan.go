package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/models"
	"golang.org/x/sync/errgroup"
)

// entityPatterns mark a source file as holding entity classes.
var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`class\s+\w+Entity\s*\{`),
	regexp.MustCompile(`@JsonSerializable\(\)`),
	regexp.MustCompile(`\.fromJson\(`),
	regexp.MustCompile(`\.toJson\(`),
	regexp.MustCompile(`factory\s+\w+\.fromJson`),
}

// skippedDirNames are never descended into.
var skippedDirNames = map[string]bool{
	"generated": true,
	"build":     true,
}

// IsEntitySource reports whether content looks like it declares entities.
func IsEntitySource(content string) bool {
	for _, p := range entityPatterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

// ScanOptions tunes FindEntityFiles.
type ScanOptions struct {
	// Workers bounds concurrent file reads. Zero means GOMAXPROCS.
	Workers int
	// SkipDirs are extra absolute directories to leave out, such as the
	// generated path.
	SkipDirs []string
}

// FindEntityFiles reads every .dart file under libDir that looks like an
// entity source. Hidden, generated and build directories are skipped. The
// result is sorted by path.
func FindEntityFiles(ctx context.Context, libDir string, opts ScanOptions) ([]models.SourceFile, error) {
	paths, err := dartFiles(libDir, opts.SkipDirs)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	files := make([]*models.SourceFile, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, path := range paths {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.NewProjectError(fmt.Sprintf("failed to read %s", path), err)
			}
			content := string(data)
			if IsEntitySource(content) {
				files[i] = &models.SourceFile{Path: path, Content: content}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []models.SourceFile
	for _, f := range files {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, nil
}

func dartFiles(libDir string, skipDirs []string) ([]string, error) {
	skip := make(map[string]bool, len(skipDirs))
	for _, dir := range skipDirs {
		skip[filepath.Clean(dir)] = true
	}

	var paths []string
	err := filepath.WalkDir(libDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != libDir && (strings.HasPrefix(d.Name(), ".") || skippedDirNames[d.Name()] || skip[filepath.Clean(path)]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".dart") && !strings.HasSuffix(d.Name(), ".g.dart") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewProjectError(fmt.Sprintf("failed to scan %s", libDir), err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadSource loads one source file.
func ReadSource(path string) (models.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.SourceFile{}, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return models.SourceFile{}, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}
	return models.SourceFile{Path: path, Content: string(data)}, nil
}
