package generator

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mcncl/jsonbean/internal/models"
)

const (
	baseDirName         = "base"
	jsonFieldFileName   = "json_field.dart"
	convertFileName     = "json_convert_content.dart"
	helperFileExtension = ".g.dart"
)

// GeneratedDir is the directory holding helper files for layout.
func GeneratedDir(layout models.ProjectLayout) string {
	return filepath.Join(layout.LibDir, filepath.FromSlash(layout.GeneratedPath))
}

// HelperPath is where the companion helper for sourcePath is written.
func HelperPath(layout models.ProjectLayout, sourcePath string) string {
	return filepath.Join(GeneratedDir(layout), FileBase(sourcePath)+helperFileExtension)
}

// FileBase strips the directory and the .dart extension from a source path.
func FileBase(sourcePath string) string {
	return strings.TrimSuffix(filepath.Base(sourcePath), ".dart")
}

// packageImport addresses a file under the generated path as a package URI.
func packageImport(layout models.ProjectLayout, rel string) string {
	return "package:" + layout.PackageName + "/" + path.Join(filepath.ToSlash(layout.GeneratedPath), rel)
}

// importFrom returns the URI a file in fromDir uses to import target: a
// package URI when target lives under lib, a relative path otherwise.
func importFrom(layout models.ProjectLayout, fromDir, target string) string {
	if rel, err := filepath.Rel(layout.LibDir, target); err == nil && !strings.HasPrefix(rel, "..") {
		return "package:" + layout.PackageName + "/" + filepath.ToSlash(rel)
	}
	if rel, err := filepath.Rel(fromDir, target); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(target)
}
