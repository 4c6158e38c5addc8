package project

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEntitySource(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"entity class", "class UserEntity {\n}", true},
		{"annotation", "@JsonSerializable()\nclass User {}", true},
		{"fromJson call", "final u = User.fromJson(map);", true},
		{"toJson call", "print(user.toJson());", true},
		{"factory", "factory User.fromJson(Map<String, dynamic> json) => x;", true},
		{"widget", "class HomePage extends StatelessWidget {}", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEntitySource(tt.content))
		})
	}
}

func TestFindEntityFiles(t *testing.T) {
	lib := t.TempDir()
	writeFile(t, filepath.Join(lib, "models", "user_entity.dart"), "class UserEntity {\n  late String name;\n}\n")
	writeFile(t, filepath.Join(lib, "models", "address.dart"), "@JsonSerializable()\nclass Address {}\n")
	writeFile(t, filepath.Join(lib, "main.dart"), "void main() {}\n")
	writeFile(t, filepath.Join(lib, "models", "user_entity.g.dart"), "UserEntity $UserEntityFromJson() {}\n")
	writeFile(t, filepath.Join(lib, "generated", "json", "base", "json_convert_content.dart"), "x.fromJson(y)\n")
	writeFile(t, filepath.Join(lib, "build", "cache.dart"), "class CacheEntity {}\n")
	writeFile(t, filepath.Join(lib, ".hidden", "h.dart"), "class HiddenEntity {}\n")
	writeFile(t, filepath.Join(lib, "custom_gen", "c.dart"), "class CustomEntity {}\n")

	files, err := FindEntityFiles(context.Background(), lib, ScanOptions{
		Workers:  2,
		SkipDirs: []string{filepath.Join(lib, "custom_gen")},
	})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(lib, "models", "address.dart"),
		filepath.Join(lib, "models", "user_entity.dart"),
	}, paths)
	assert.Contains(t, files[1].Content, "late String name;")
}

func TestFindEntityFiles_Empty(t *testing.T) {
	files, err := FindEntityFiles(context.Background(), t.TempDir(), ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindEntityFiles_MissingDir(t *testing.T) {
	_, err := FindEntityFiles(context.Background(), filepath.Join(t.TempDir(), "nope"), ScanOptions{})
	require.Error(t, err)
	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeProject, appErr.Type)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.dart")
	writeFile(t, path, "class A {}\n")

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path)
	assert.Equal(t, "class A {}\n", src.Content)

	_, err = ReadSource(path + ".missing")
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
}
