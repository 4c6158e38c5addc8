// Package project locates a Flutter project on disk, resolves where generated
// files belong and moves source and artifact files between disk and memory.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	// PubspecFile is the manifest every Dart package carries.
	PubspecFile = "pubspec.yaml"
	// DefaultPackageName is used when the manifest has no name.
	DefaultPackageName = "flutter_app"
	// DefaultGeneratedPath is used when neither the manifest nor the config
	// name a generated path.
	DefaultGeneratedPath = "generated/json"

	pubspecCacheSize = 16
)

// Pubspec is the subset of pubspec.yaml the generator reads.
type Pubspec struct {
	Name            string         `yaml:"name"`
	Dependencies    map[string]any `yaml:"dependencies"`
	DevDependencies map[string]any `yaml:"dev_dependencies"`
	FlutterJSON     struct {
		GeneratedPath string `yaml:"generated_path"`
	} `yaml:"flutter_json"`
}

// IsFlutter reports whether flutter is a regular or dev dependency.
func (p *Pubspec) IsFlutter() bool {
	_, dep := p.Dependencies["flutter"]
	_, dev := p.DevDependencies["flutter"]
	return dep || dev
}

// PackageName returns the package name used in package: imports.
func (p *Pubspec) PackageName() string {
	if p.Name == "" {
		return DefaultPackageName
	}
	return p.Name
}

// Detector answers questions about the project rooted at one directory.
// Parsed manifests are cached until Refresh.
type Detector struct {
	root  string
	cache *lru.Cache[string, *Pubspec]
}

// NewDetector creates a detector for the project at root.
func NewDetector(root string) (*Detector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewProjectError(fmt.Sprintf("invalid project root '%s'", root), err)
	}
	cache, err := lru.New[string, *Pubspec](pubspecCacheSize)
	if err != nil {
		return nil, errors.NewProjectError("failed to create manifest cache", err)
	}
	return &Detector{root: abs, cache: cache}, nil
}

// FindRoot walks up from dir to the nearest directory holding pubspec.yaml.
func FindRoot(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewProjectError(fmt.Sprintf("invalid directory '%s'", dir), err)
	}
	for {
		if _, err := os.Stat(filepath.Join(current, PubspecFile)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.NewProjectError(fmt.Sprintf("no %s found above %s", PubspecFile, dir), errors.ErrNotFlutterProject)
		}
		current = parent
	}
}

// Root returns the absolute project root.
func (d *Detector) Root() string {
	return d.root
}

// PubspecPath returns the manifest location.
func (d *Detector) PubspecPath() string {
	return filepath.Join(d.root, PubspecFile)
}

// Pubspec returns the parsed manifest, reading it on first use.
func (d *Detector) Pubspec() (*Pubspec, error) {
	path := d.PubspecPath()
	if p, ok := d.cache.Get(path); ok {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewProjectError(fmt.Sprintf("%s not found in %s", PubspecFile, d.root), errors.ErrNotFlutterProject)
		}
		return nil, errors.NewProjectError(fmt.Sprintf("failed to read %s", path), err)
	}

	p := &Pubspec{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.NewProjectError(fmt.Sprintf("failed to parse %s", path), err)
	}
	d.cache.Add(path, p)
	return p, nil
}

// IsFlutterProject reports whether the root holds a Flutter manifest.
func (d *Detector) IsFlutterProject() bool {
	p, err := d.Pubspec()
	return err == nil && p.IsFlutter()
}

// LibDir returns the project's lib directory.
func (d *Detector) LibDir() (string, error) {
	lib := filepath.Join(d.root, "lib")
	info, err := os.Stat(lib)
	if err != nil || !info.IsDir() {
		return "", errors.NewProjectError(fmt.Sprintf("no lib directory in %s", d.root), errors.ErrNoLibDir)
	}
	return lib, nil
}

// Layout resolves the project layout. The manifest's
// flutter_json.generated_path wins over configured, which wins over the
// default.
func (d *Detector) Layout(configured string) (models.ProjectLayout, error) {
	p, err := d.Pubspec()
	if err != nil {
		return models.ProjectLayout{}, err
	}
	if !p.IsFlutter() {
		return models.ProjectLayout{}, errors.NewProjectError(fmt.Sprintf("%s does not depend on flutter", d.PubspecPath()), errors.ErrNotFlutterProject)
	}
	lib, err := d.LibDir()
	if err != nil {
		return models.ProjectLayout{}, err
	}

	generated := DefaultGeneratedPath
	switch {
	case p.FlutterJSON.GeneratedPath != "":
		generated = p.FlutterJSON.GeneratedPath
	case configured != "":
		generated = configured
	}

	return models.ProjectLayout{
		PackageName:   p.PackageName(),
		LibDir:        lib,
		GeneratedPath: filepath.ToSlash(filepath.Clean(generated)),
	}, nil
}

// Refresh drops cached manifests so the next call rereads them.
func (d *Detector) Refresh() {
	d.cache.Purge()
}
