package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcncl/jsonbean/internal/models"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvGeneratedPath = "JSONBEAN_GENERATED_PATH"
	EnvModelSuffix   = "JSONBEAN_MODEL_SUFFIX"
	EnvNullSafety    = "JSONBEAN_NULL_SAFETY"
	EnvCopyWith      = "JSONBEAN_COPY_WITH"
)

// Config represents the complete configuration for jsonbean
type Config struct {
	GeneratedPath    string       `yaml:"generated_path"`
	ModelSuffix      string       `yaml:"model_suffix"`
	EnableNullSafety bool         `yaml:"enable_null_safety"`
	GenerateCopyWith bool         `yaml:"generate_copy_with"`
	Output           OutputConfig `yaml:"output"`
	Watch            WatchConfig  `yaml:"watch"`
	Dev              DevConfig    `yaml:"dev"`
}

// OutputConfig controls how generated files are written
type OutputConfig struct {
	FileHeader string `yaml:"file_header"`
	Format     bool   `yaml:"format"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Overrides carries values given explicitly on the command line. Nil and
// empty fields leave the loaded value alone.
type Overrides struct {
	GeneratedPath string
	ModelSuffix   string
	NullSafety    *bool
	CopyWith      *bool
	Debug         bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		GeneratedPath:    "generated/json",
		ModelSuffix:      "Entity",
		EnableNullSafety: true,
		GenerateCopyWith: true,
		Output: OutputConfig{
			Format: true,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in dir and its parents. An empty
// dir starts from the working directory.
func FindConfigFile(dir string) string {
	configNames := []string{".jsonbean.yml", ".jsonbean.yaml", "jsonbean.yml", "jsonbean.yaml"}

	currentDir := dir
	if currentDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		currentDir = wd
	}
	currentDir, err := filepath.Abs(currentDir)
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LoadEnvFile reads KEY=VALUE pairs from a .env file in dir. A missing file
// yields an empty map.
func LoadEnvFile(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// EnvLookup resolves a variable from the process environment first and the
// .env values second.
func EnvLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides config values from the JSONBEAN_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvGeneratedPath); ok && v != "" {
		c.GeneratedPath = v
	}
	if v, ok := lookup(EnvModelSuffix); ok {
		c.ModelSuffix = v
	}
	if v, ok := lookup(EnvNullSafety); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", EnvNullSafety, v, err)
		}
		c.EnableNullSafety = b
	}
	if v, ok := lookup(EnvCopyWith); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", EnvCopyWith, v, err)
		}
		c.GenerateCopyWith = b
	}
	return nil
}

// ApplyOverrides applies explicit command-line values.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.GeneratedPath != "" {
		c.GeneratedPath = o.GeneratedPath
	}
	if o.ModelSuffix != "" {
		c.ModelSuffix = o.ModelSuffix
	}
	if o.NullSafety != nil {
		c.EnableNullSafety = *o.NullSafety
	}
	if o.CopyWith != nil {
		c.GenerateCopyWith = *o.CopyWith
	}
	if o.Debug {
		c.Dev.Debug = true
	}
}

var suffixRegex = regexp.MustCompile(`^[A-Za-z0-9]*$`)

// Validate checks values that would produce broken output.
func (c *Config) Validate() error {
	if !suffixRegex.MatchString(c.ModelSuffix) {
		return fmt.Errorf("invalid model_suffix '%s': only letters and digits are allowed", c.ModelSuffix)
	}
	clean := filepath.ToSlash(filepath.Clean(c.GeneratedPath))
	if c.GeneratedPath == "" || filepath.IsAbs(c.GeneratedPath) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("invalid generated_path '%s': must be a relative path inside lib", c.GeneratedPath)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("invalid watch.debounce '%s': must not be negative", c.Watch.Debounce)
	}
	return nil
}

// Options returns the generation options this config describes.
func (c *Config) Options() models.GenerationOptions {
	return models.GenerationOptions{
		ClassNameSuffix:    c.ModelSuffix,
		NullSafetyEnabled:  c.EnableNullSafety,
		GenerateCopyMethod: c.GenerateCopyWith,
	}
}

// LoadConfigWithCLI builds the effective config: defaults, then the config
// file, then the environment and .env in envDir, then CLI overrides.
func LoadConfigWithCLI(configPath, envDir string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	dotenv, err := LoadEnvFile(envDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(EnvLookup(dotenv)); err != nil {
		return nil, err
	}

	cfg.ApplyOverrides(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
