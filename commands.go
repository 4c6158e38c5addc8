package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/mcncl/jsonbean/internal/analyzer"
	"github.com/mcncl/jsonbean/internal/binding"
	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/generator"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/parser"
	"github.com/mcncl/jsonbean/internal/project"
)

// GenerateCmd synthesizes a new entity file from a JSON sample.
type GenerateCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Class       string `help:"Base name of the root class; the configured suffix is appended." short:"n" default:"Root"`
	TargetDir   string `help:"Directory for the entity file. Defaults to lib/models." short:"t" type:"path"`
	Interactive bool   `help:"Paste JSON directly and press Ctrl+D to process." short:"I"`
	Schema      bool   `help:"Read the input as a JSON Schema document instead of a sample." short:"s" xor:"source"`
	Verify      bool   `help:"Round-trip the sample through the generated classes before writing." xor:"source"`
	DryRun      bool   `help:"Print the generated files instead of writing them."`
}

func (c *GenerateCmd) Run(ctx context.Context, app *App) error {
	layout, err := app.layout()
	if err != nil {
		return err
	}

	text, err := readJSONInput(c.Input, c.Interactive, app.Stdin, app.Stderr)
	if err != nil {
		return err
	}

	if c.Verify {
		if err := c.verify(app, text); err != nil {
			return err
		}
	}

	targetDir := c.TargetDir
	if targetDir == "" {
		targetDir = filepath.Join(layout.LibDir, "models")
	}

	gen := app.generator(layout)
	generate := gen.GenerateFromJSON
	if c.Schema {
		generate = gen.GenerateFromSchema
	}
	artifacts, err := generate(text, c.Class, targetDir)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		fmt.Fprintf(app.Stdout, "%s no JSON object found in the input; nothing to generate\n", warnMark)
		return nil
	}

	if c.DryRun {
		for _, a := range artifacts {
			fmt.Fprintf(app.Stdout, "// %s\n%s\n", app.rel(a.FilePath), a.Content)
		}
		return nil
	}

	res, err := project.WriteArtifacts(ctx, artifacts, 0)
	if err != nil {
		return err
	}
	app.reportWrites(res)

	app.regenerateQuietly(ctx)
	return nil
}

func (c *GenerateCmd) verify(app *App, text string) error {
	ir, err := parser.ParseString(text)
	if err != nil {
		return err
	}
	opts := app.Config.Options()
	defs, err := analyzer.NewAnalyzer(opts).Analyze(ir, c.Class)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}
	return checkRoundTrip(app, binding.NewRegistry(defs), defs[0].Name, ir.Root)
}

// HelpersCmd regenerates all helper files and the registry.
type HelpersCmd struct{}

func (c *HelpersCmd) Run(ctx context.Context, app *App) error {
	res, err := app.regenerate(ctx)
	if err != nil {
		return err
	}
	app.reportWrites(res)
	return nil
}

// AugmentCmd retrofits an existing class with JSON hooks.
type AugmentCmd struct {
	File   string `arg:"" help:"Dart source file holding the class." type:"existingfile"`
	Class  string `help:"Name of the class to augment." short:"n" required:""`
	DryRun bool   `help:"Print the augmented source instead of writing it."`
}

func (c *AugmentCmd) Run(ctx context.Context, app *App) error {
	layout, err := app.layout()
	if err != nil {
		return err
	}

	src, err := project.ReadSource(c.File)
	if err != nil {
		return err
	}

	out, err := app.generator(layout).AugmentSource(src, c.Class)
	if err != nil {
		return err
	}

	if c.DryRun {
		fmt.Fprint(app.Stdout, out)
		return nil
	}

	if out == src.Content {
		fmt.Fprintf(app.Stdout, "%s %s already has fromJson and toJson\n", skipMark, c.Class)
	} else {
		src.Content = out
		if err := project.WriteSource(src); err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "%s %s augmented in %s\n", okMark, c.Class, app.rel(src.Path))
	}

	app.regenerateQuietly(ctx)
	return nil
}

// WatchCmd keeps helpers in sync with entity sources.
type WatchCmd struct{}

func (c *WatchCmd) Run(ctx context.Context, app *App) error {
	layout, err := app.layout()
	if err != nil {
		return err
	}

	if res, err := app.regenerate(ctx); err != nil {
		app.Logger.Warn("initial regeneration failed", "error", errors.UserFriendlyError(err))
	} else {
		app.reportWrites(res)
	}

	fmt.Fprintf(app.Stdout, "watching %s (Ctrl+C to stop)\n", app.rel(layout.LibDir))
	return project.Watch(ctx, project.WatchOptions{
		Root:         app.Detector.Root(),
		LibDir:       layout.LibDir,
		GeneratedDir: generator.GeneratedDir(layout),
		Debounce:     app.Config.Watch.Debounce,
		Logger:       app.Logger,
		OnPubspec:    app.Detector.Refresh,
	}, func(ctx context.Context, changed []string) error {
		for _, p := range changed {
			app.Logger.Debug("changed", "path", app.rel(p))
		}
		res, err := app.regenerate(ctx)
		if err != nil {
			return err
		}
		for _, p := range res.Written {
			fmt.Fprintf(app.Stdout, "%s %s\n", okMark, app.rel(p))
		}
		return nil
	})
}

// VerifyCmd checks that a sample survives decode and encode through an
// existing entity class.
type VerifyCmd struct {
	Class   string   `help:"Entity class to decode into." short:"n" required:""`
	Input   string   `help:"Path to the JSON sample. If not specified, reads from stdin." short:"i" type:"path"`
	Sources []string `arg:"" optional:"" help:"Dart sources declaring the classes. Defaults to every entity source under lib/." type:"existingfile"`
}

func (c *VerifyCmd) Run(ctx context.Context, app *App) error {
	text, err := readJSONInput(c.Input, false, app.Stdin, app.Stderr)
	if err != nil {
		return err
	}
	ir, err := parser.ParseString(text)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(ctx, app, c.Sources)
	if err != nil {
		return err
	}
	if _, ok := reg.Lookup(c.Class); !ok {
		return errors.NewClassNotFoundError(c.Class)
	}
	return checkRoundTrip(app, reg, c.Class, ir.Root)
}

// ConvertCmd applies the registry's conversion rules to one JSON value.
type ConvertCmd struct {
	Type    string   `arg:"" help:"Dart type to convert to, such as int, List<double> or UserEntity."`
	Value   string   `arg:"" help:"JSON value to convert."`
	Sources []string `help:"Dart sources declaring classes usable as targets." short:"s" type:"existingfile"`
}

func (c *ConvertCmd) Run(ctx context.Context, app *App) error {
	ir, err := parser.ParseString(c.Value)
	if err != nil {
		return err
	}

	reg := binding.NewRegistry(nil)
	if len(c.Sources) > 0 {
		if reg, err = loadRegistry(ctx, app, c.Sources); err != nil {
			return err
		}
	}

	exported, err := reg.Export(reg.Coercer().Coerce(c.Type, ir.Root))
	if err != nil {
		return errors.NewGenerateError("failed to render converted value", err)
	}
	out, err := gojson.Marshal(exported)
	if err != nil {
		return errors.NewOutputError("failed to encode converted value", err)
	}
	fmt.Fprintln(app.Stdout, string(out))
	return nil
}

// loadRegistry indexes the entity classes of paths, or of the whole project
// when paths is empty.
func loadRegistry(ctx context.Context, app *App, paths []string) (*binding.Registry, error) {
	var sources []models.SourceFile
	if len(paths) == 0 {
		layout, err := app.layout()
		if err != nil {
			return nil, err
		}
		sources, err = project.FindEntityFiles(ctx, layout.LibDir, project.ScanOptions{
			SkipDirs: []string{generator.GeneratedDir(layout)},
		})
		if err != nil {
			return nil, err
		}
	} else {
		for _, p := range paths {
			src, err := project.ReadSource(p)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}

	var defs []models.ClassDefinition
	for _, src := range sources {
		defs = append(defs, generator.EntityClasses(src)...)
	}
	return binding.NewRegistry(defs), nil
}

func checkRoundTrip(app *App, reg *binding.Registry, className string, sample models.JSONValue) error {
	diff, err := reg.Verify(className, sample)
	if err != nil {
		var castErr *binding.CastError
		if stderrors.As(err, &castErr) {
			return errors.NewGenerateError(fmt.Sprintf("sample does not decode as %s", className), err)
		}
		return errors.NewGenerateError(fmt.Sprintf("round trip through %s failed", className), err)
	}
	if diff != "" {
		fmt.Fprintf(app.Stdout, "%s round trip through %s changed the sample (-sample +encoded):\n%s", warnMark, className, indent(diff))
		return errors.NewGenerateError(fmt.Sprintf("round trip through %s is lossy", className), nil)
	}
	fmt.Fprintf(app.Stdout, "%s sample round-trips through %s\n", okMark, className)
	return nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
