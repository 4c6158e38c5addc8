package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mcncl/jsonbean/internal/config"
	"github.com/mcncl/jsonbean/internal/errors"
	"github.com/mcncl/jsonbean/internal/generator"
	"github.com/mcncl/jsonbean/internal/models"
	"github.com/mcncl/jsonbean/internal/project"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Root          string `help:"Flutter project root. Defaults to the nearest directory holding pubspec.yaml." short:"C" type:"path"`
	Config        string `help:"Path to a config file. Defaults to .jsonbean.yml found above the project root." short:"c" type:"path"`
	Debug         bool   `help:"Enable debug logging." short:"d"`
	GeneratedPath string `help:"Directory under lib/ for helper files."`
	Suffix        string `help:"Suffix appended to root class names."`
	NoNullSafety  bool   `help:"Emit non-nullable field types."`
	NoCopyWith    bool   `help:"Do not emit copyWith methods."`

	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Generate GenerateCmd `cmd:"" help:"Generate an entity class and its helpers from a JSON sample."`
	Helpers  HelpersCmd  `cmd:"" help:"Regenerate helper files and the registry for every entity under lib/."`
	Augment  AugmentCmd  `cmd:"" help:"Add fromJson and toJson to an existing class."`
	Watch    WatchCmd    `cmd:"" help:"Regenerate helpers whenever entity sources change."`
	Verify   VerifyCmd   `cmd:"" help:"Round-trip a JSON sample through an entity class."`
	Convert  ConvertCmd  `cmd:"" help:"Convert a JSON value to a Dart type the way the generated registry does."`
}

// App holds what every command needs once flags are parsed.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Detector *project.Detector

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	skipMark = color.New(color.FgBlue).Sprint("=")
)

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("jsonbean"),
		kong.Description("Generate Dart entity classes and JSON helpers for Flutter projects"),
		kong.UsageOnError(),
		kong.Vars{"version": "jsonbean version " + Version},
	)

	// With no arguments, paste a JSON sample interactively.
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"generate", "--interactive"}
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	app, err := newApp(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonbean --help\n")
		stop()
		os.Exit(1)
	}
}

// newApp resolves the project root and the effective configuration.
func newApp(cli *CLI) (*App, error) {
	root := cli.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.NewProjectError("failed to determine working directory", err)
		}
		root = wd
		if found, err := project.FindRoot(wd); err == nil {
			root = found
		}
	}

	detector, err := project.NewDetector(root)
	if err != nil {
		return nil, err
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile(detector.Root())
	}

	overrides := config.Overrides{
		GeneratedPath: cli.GeneratedPath,
		ModelSuffix:   cli.Suffix,
		Debug:         cli.Debug,
	}
	if cli.NoNullSafety {
		overrides.NullSafety = boolPtr(false)
	}
	if cli.NoCopyWith {
		overrides.CopyWith = boolPtr(false)
	}

	cfg, err := config.LoadConfigWithCLI(configPath, detector.Root(), overrides)
	if err != nil {
		return nil, errors.NewInputError("invalid configuration", err)
	}

	return &App{
		Config:   cfg,
		Logger:   newLogger(os.Stderr, cfg.Dev.Debug),
		Detector: detector,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func boolPtr(b bool) *bool { return &b }

// layout resolves where generated files go for the current project.
func (a *App) layout() (models.ProjectLayout, error) {
	return a.Detector.Layout(a.Config.GeneratedPath)
}

func (a *App) generator(layout models.ProjectLayout) *generator.Generator {
	var opts []generator.Option
	if a.Config.Output.FileHeader != "" {
		opts = append(opts, generator.WithFileHeader(a.Config.Output.FileHeader))
	}
	if !a.Config.Output.Format {
		opts = append(opts, generator.WithoutFormatting())
	}
	return generator.NewGenerator(a.Config.Options(), layout, opts...)
}

// regenerate rebuilds every helper file and the registry from the entity
// sources under lib/.
func (a *App) regenerate(ctx context.Context) (project.WriteResult, error) {
	layout, err := a.layout()
	if err != nil {
		return project.WriteResult{}, err
	}

	sources, err := project.FindEntityFiles(ctx, layout.LibDir, project.ScanOptions{
		SkipDirs: []string{generator.GeneratedDir(layout)},
	})
	if err != nil {
		return project.WriteResult{}, err
	}
	if len(sources) == 0 {
		return project.WriteResult{}, errors.NewProjectError("no entity classes found under "+layout.LibDir, errors.ErrNoEntityFiles)
	}
	a.Logger.Debug("scanned entity sources", "count", len(sources))

	result := a.generator(layout).GenerateHelpers(sources)
	for _, d := range result.Duplicates {
		a.Logger.Warn("duplicate entity class", "class", d.ClassName, "kept", d.FirstPath, "ignored", d.IgnoredPath)
	}
	for _, f := range result.Failures {
		a.Logger.Warn("skipped file", "path", f.Path, "error", f.Err)
	}

	return project.WriteArtifacts(ctx, result.Artifacts, 0)
}

// regenerateQuietly runs regenerate as a follow-up step whose failure only
// warrants a warning.
func (a *App) regenerateQuietly(ctx context.Context) {
	res, err := a.regenerate(ctx)
	if err != nil {
		a.Logger.Warn("helper regeneration failed", "error", errors.UserFriendlyError(err))
		return
	}
	a.Logger.Debug("helpers regenerated", "written", len(res.Written), "unchanged", len(res.Unchanged))
}

func (a *App) reportWrites(res project.WriteResult) {
	for _, p := range res.Written {
		fmt.Fprintf(a.Stdout, "%s %s\n", okMark, a.rel(p))
	}
	for _, p := range res.Unchanged {
		fmt.Fprintf(a.Stdout, "%s %s (unchanged)\n", skipMark, a.rel(p))
	}
}

func (a *App) rel(path string) string {
	if r, err := filepath.Rel(a.Detector.Root(), path); err == nil {
		return r
	}
	return path
}

// readJSONInput reads JSON from a file, piped stdin or an interactive paste.
func readJSONInput(path string, interactive bool, stdin io.Reader, prompt io.Writer) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
			}
			return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
		}
		if len(data) == 0 {
			return "", errors.NewInputError(fmt.Sprintf("input file '%s' is empty", path), errors.ErrEmptyInput)
		}
		return string(data), nil
	}

	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			if !interactive {
				return "", errors.NewInputError("no input provided", errors.ErrNoInput)
			}
			return readInteractiveInput(stdin, prompt)
		}
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// readInteractiveInput lets the user paste JSON and finish with Ctrl+D.
func readInteractiveInput(stdin io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprintln(prompt, "jsonbean interactive mode")
	fmt.Fprintln(prompt, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(stdin)
	var b strings.Builder
	for {
		line, err := reader.ReadString('\n')
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}
	fmt.Fprintln(prompt, "\nProcessing JSON...")
	return b.String(), nil
}
