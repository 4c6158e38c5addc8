package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/jsonbean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	a := models.GeneratedArtifact{FilePath: filepath.Join(dir, "lib", "models", "user_entity.dart"), Content: "class A {}\n", Kind: models.ArtifactEntity}
	b := models.GeneratedArtifact{FilePath: filepath.Join(dir, "lib", "generated", "json", "user_entity.g.dart"), Content: "// b\n", Kind: models.ArtifactHelper}

	res, err := WriteArtifacts(context.Background(), []models.GeneratedArtifact{b, a}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{b.FilePath, a.FilePath}, res.Written, "sorted by path")
	assert.Empty(t, res.Unchanged)

	data, err := os.ReadFile(a.FilePath)
	require.NoError(t, err)
	assert.Equal(t, a.Content, string(data))

	b.Content = "// b2\n"
	res, err = WriteArtifacts(context.Background(), []models.GeneratedArtifact{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{b.FilePath}, res.Written)
	assert.Equal(t, []string{a.FilePath}, res.Unchanged)

	data, err = os.ReadFile(b.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "// b2\n", string(data))
}

func TestWriteArtifacts_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "file, not dir")

	_, err := WriteArtifacts(context.Background(), []models.GeneratedArtifact{
		{FilePath: filepath.Join(blocker, "x.dart"), Content: "x"},
	}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestWriteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dart")
	writeFile(t, path, "old")
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, WriteSource(models.SourceFile{Path: path, Content: "new"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
