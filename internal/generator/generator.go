package generator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mcncl/jsonbean/internal/analyzer"
	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/extractor"
	"github.com/mcncl/jsonbean/internal/formatter"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/naming"
	"github.com/mcncl/jsonbean/internal/parser"
	"github.com/mcncl/jsonbean/internal/schema"
)

// Generator turns JSON samples and existing entity sources into artifacts.
// It never writes files; callers persist what it returns.
type Generator struct {
	opts      models.GenerationOptions
	layout    models.ProjectLayout
	header    string
	formatter *formatter.Formatter
}

// Option configures a Generator.
type Option func(*Generator)

// WithFileHeader prepends header to every generated entity and helper file.
func WithFileHeader(header string) Option {
	return func(g *Generator) {
		g.header = strings.TrimRight(header, "\n")
	}
}

// WithoutFormatting emits rendered text as is.
func WithoutFormatting() Option {
	return func(g *Generator) {
		g.formatter = nil
	}
}

// NewGenerator creates a new Generator instance
func NewGenerator(opts models.GenerationOptions, layout models.ProjectLayout, options ...Option) *Generator {
	g := &Generator{
		opts:      opts,
		layout:    layout,
		formatter: formatter.NewFormatter(),
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// FileError is a failure confined to one source file of a batch.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// HelperResult is the outcome of a batch helper generation.
type HelperResult struct {
	Artifacts  []models.GeneratedArtifact
	Classes    []RegistryEntry
	Duplicates []Duplicate
	Failures   []*FileError
}

// GenerateFromJSON synthesizes the entity file for className from jsonText in
// targetDir, plus its companion helper. An input without any object yields no
// artifacts and no error.
func (g *Generator) GenerateFromJSON(jsonText, className, targetDir string) ([]models.GeneratedArtifact, error) {
	if className == "" {
		className = analyzer.DefaultRootName
	}
	ir, err := parser.ParseString(jsonText)
	if err != nil {
		return nil, err
	}

	defs, err := analyzer.NewAnalyzer(g.opts).Analyze(ir, className)
	if err != nil {
		return nil, err
	}
	return g.renderEntity(defs, className, targetDir)
}

// GenerateFromSchema is GenerateFromJSON for a JSON Schema document instead of
// a sample.
func (g *Generator) GenerateFromSchema(schemaText, className, targetDir string) ([]models.GeneratedArtifact, error) {
	doc, err := schema.ParseString(schemaText)
	if err != nil {
		return nil, err
	}
	if className == "" {
		className = analyzer.DefaultRootName
	}
	defs, err := schema.NewConverter(doc, g.opts).Convert(className)
	if err != nil {
		return nil, err
	}
	return g.renderEntity(defs, className, targetDir)
}

// renderEntity turns defs into the entity file for className and its helper.
func (g *Generator) renderEntity(defs []models.ClassDefinition, className, targetDir string) ([]models.GeneratedArtifact, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	fileBase := naming.EntityFileBase(className)
	entityPath := filepath.Join(targetDir, fileBase+".dart")

	entity, err := g.finish(RenderEntityFile(defs, fileBase, g.layout, g.opts), true)
	if err != nil {
		return nil, errors.NewGenerateError(fmt.Sprintf("failed to render entity file for %s", className), err)
	}
	helper, err := g.finish(RenderHelperFile(defs, entityPath, g.layout), true)
	if err != nil {
		return nil, errors.NewGenerateError(fmt.Sprintf("failed to render helper file for %s", className), err)
	}

	return []models.GeneratedArtifact{
		{FilePath: entityPath, Content: entity, Kind: models.ArtifactEntity},
		{FilePath: HelperPath(g.layout, entityPath), Content: helper, Kind: models.ArtifactHelper},
	}, nil
}

// AugmentSource adds fromJson/toJson hooks to className in src. The companion
// helper is named after src's file. Output is not reformatted so the rest of
// the file stays byte-for-byte as written.
func (g *Generator) AugmentSource(src models.SourceFile, className string) (string, error) {
	fileBase := FileBase(src.Path)
	if fileBase == "" || fileBase == "." {
		fileBase = naming.ClassFileBase(className)
	}
	return Augment(src.Content, className, fileBase, g.layout)
}

// EntityClasses returns the classes of src that carry a fromJson hook, with
// annotation keys applied.
func EntityClasses(src models.SourceFile) []models.ClassDefinition {
	var defs []models.ClassDefinition
	for _, name := range extractor.ClassNames(src.Content) {
		if !referencesFromJSON(src.Content, name) {
			continue
		}
		defs = append(defs, extractor.ExtractAnnotated(src.Content, name))
	}
	return defs
}

// referencesFromJSON reports whether content mentions className.fromJson as a
// whole word, so Address does not match HomeAddress.fromJson.
func referencesFromJSON(content, className string) bool {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(className) + `\.fromJson\b`).MatchString(content)
}

// GenerateHelpers regenerates the base files, one helper per source holding
// entity classes and the registry over all of them. Sources are taken in the
// order given. A failure in one file is recorded and the rest continue.
func (g *Generator) GenerateHelpers(sources []models.SourceFile) HelperResult {
	var result HelperResult

	baseDir := filepath.Join(GeneratedDir(g.layout), baseDirName)
	result.Artifacts = append(result.Artifacts, models.GeneratedArtifact{
		FilePath: filepath.Join(baseDir, jsonFieldFileName),
		Content:  RenderJSONField(),
		Kind:     models.ArtifactBase,
	})

	for _, src := range sources {
		defs := EntityClasses(src)
		if len(defs) == 0 {
			continue
		}

		helper, err := g.finish(RenderHelperFile(defs, src.Path, g.layout), true)
		if err != nil {
			result.Failures = append(result.Failures, &FileError{
				Path: src.Path,
				Err:  errors.NewGenerateError("failed to render helper file", err),
			})
			continue
		}
		result.Artifacts = append(result.Artifacts, models.GeneratedArtifact{
			FilePath: HelperPath(g.layout, src.Path),
			Content:  helper,
			Kind:     models.ArtifactHelper,
		})
		for _, def := range defs {
			result.Classes = append(result.Classes, RegistryEntry{ClassName: def.Name, SourcePath: src.Path})
		}
	}

	registry, duplicates := RenderRegistry(result.Classes, g.layout)
	result.Duplicates = duplicates
	if content, err := g.finish(registry, false); err == nil {
		result.Artifacts = append(result.Artifacts, models.GeneratedArtifact{
			FilePath: filepath.Join(baseDir, convertFileName),
			Content:  content,
			Kind:     models.ArtifactBase,
		})
	} else {
		result.Failures = append(result.Failures, &FileError{
			Path: filepath.Join(baseDir, convertFileName),
			Err:  errors.NewGenerateError("failed to render registry", err),
		})
	}

	return result
}

// finish applies the optional header and formatting to rendered text.
func (g *Generator) finish(content string, withHeader bool) (string, error) {
	if withHeader && g.header != "" {
		content = g.header + "\n\n" + content
	}
	if g.formatter == nil {
		return content, nil
	}
	formatted, err := g.formatter.Format(content)
	if err != nil {
		return "", errors.NewFormatError("generated code is malformed", err)
	}
	return formatted, nil
}
