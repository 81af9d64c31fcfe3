// Package config resolves the layered configuration a run enforces:
// built-in defaults, overridden by the nearest discovered config file,
// overridden by environment variables, overridden by CLI flags. Discovery
// and layering follow tally's koanf-based approach; the schema itself is
// the Fortran domain's: rule selection, per-file ignores, line length,
// target standard, and preview mode.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// FileNames lists the project config file names searched for during
// discovery, in priority order. fpm.toml is handled separately since only
// its [extra.fortitude] subtree applies.
var FileNames = []string{".fortitude.toml", "fortitude.toml"}

// FpmFileName is Fortran Package Manager's manifest; a run honours its
// [extra.fortitude] table as a lowest-priority project config when no
// dedicated fortitude config file is present.
const FpmFileName = "fpm.toml"

// EnvPrefix is the prefix recognised for environment variable overrides,
// e.g. FORTITUDE_LINE_LENGTH, FORTITUDE_CHECK_SELECT.
const EnvPrefix = "FORTITUDE_"

// CheckConfig is the [check] table: rule selection, per-file ignores, and
// fix policy.
type CheckConfig struct {
	Select          []string            `koanf:"select" toml:"select"`
	Ignore          []string            `koanf:"ignore" toml:"ignore"`
	ExtendSelect    []string            `koanf:"extend-select" toml:"extend-select"`
	PerFileIgnores  map[string][]string `koanf:"per-file-ignores" toml:"per-file-ignores"`
	Fix             bool                `koanf:"fix" toml:"fix"`
	FixUnsafe       bool                `koanf:"unsafe-fixes" toml:"unsafe-fixes"`
	ExplicitPreview bool                `koanf:"explicit-preview-rules" toml:"explicit-preview-rules"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Format     string `koanf:"format" toml:"format"`
	Path       string `koanf:"path" toml:"path"`
	ShowSource bool   `koanf:"show-source" toml:"show-source"`
}

// LoggingConfig holds the level/format knobs read from config and flags.
type LoggingConfig struct {
	Level  string `koanf:"level" toml:"level"`
	Format string `koanf:"format" toml:"format"` // "text" or "json"
}

// Configuration is the full on-disk (or env/CLI-overridden) shape, unmarshalled
// via koanf from TOML, environment, and CLI sources layered together.
type Configuration struct {
	LineLength       int                       `koanf:"line-length" toml:"line-length"`
	TargetStandard   string                    `koanf:"target-standard" toml:"target-standard"`
	Preview          bool                      `koanf:"preview" toml:"preview"`
	Exclude          []string                  `koanf:"exclude" toml:"exclude"`
	ExtendExclude    []string                  `koanf:"extend-exclude" toml:"extend-exclude"`
	RespectGitignore bool                      `koanf:"respect-gitignore" toml:"respect-gitignore"`
	Check            CheckConfig               `koanf:"check" toml:"check"`
	Output           OutputConfig              `koanf:"output" toml:"output"`
	Logging          LoggingConfig             `koanf:"logging" toml:"logging"`
	Rules            map[string]map[string]any `koanf:"rules" toml:"rules"`

	// ConfigFile is metadata recording which file (if any) was discovered,
	// not itself loaded from config.
	ConfigFile string `koanf:"-" toml:"-"`
}

// Default returns the built-in configuration defaults.
func Default() *Configuration {
	return &Configuration{
		LineLength:       132,
		TargetStandard:   "f2018",
		Preview:          false,
		RespectGitignore: true,
		Check: CheckConfig{
			Fix: false,
		},
		Output: OutputConfig{
			Format:     "concise",
			Path:       "stdout",
			ShowSource: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Discover finds the closest project config for a target path, walking up
// the directory tree and never crossing a filesystem root. It checks
// FileNames first and falls back to fpm.toml's [extra.fortitude] subtree.
// Returns "" if none is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}
	dir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate
			}
		}
		if fpm := filepath.Join(dir, FpmFileName); fileExists(fpm) && hasFortitudeTable(fpm) {
			return fpm
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// UserConfigPath returns the path to the user-level config, if the host OS
// exposes a config directory.
func UserConfigPath() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, "fortitude", "fortitude.toml")
	if !fileExists(path) {
		return "", false
	}
	return path, true
}

func hasFortitudeTable(fpmPath string) bool {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fpmPath), toml.Parser()); err != nil {
		return false
	}
	return k.Exists("extra.fortitude")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Overrides is the CLI/env-facing set of flags that, when present, win over
// any layer below them.
type Overrides struct {
	Select          []string
	Ignore          []string
	ExtendSelect    []string
	LineLength      *int
	TargetStandard  string
	Preview         *bool
	Fix             *bool
	FixUnsafe       *bool
	OutputFormat    string
	ConfigPath      string // explicit --config, bypasses discovery
}

// Load resolves a Configuration for targetPath: defaults, then the
// discovered (or explicitly named) project config file, then environment
// variables, then the CLI overrides — each layer replacing only the keys it
// sets.
func Load(targetPath string, ov Overrides) (*Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	configPath := ov.ConfigPath
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	if configPath == "" {
		if userPath, ok := UserConfigPath(); ok {
			configPath = userPath
		}
	}

	if configPath != "" {
		if strings.HasSuffix(configPath, FpmFileName) {
			if err := loadFpmSubtree(k, configPath); err != nil {
				return nil, err
			}
		} else if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := applyOverrides(k, ov); err != nil {
		return nil, err
	}

	cfg := &Configuration{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ConfigFile = configPath
	return cfg, nil
}

func loadFpmSubtree(k *koanf.Koanf, fpmPath string) error {
	sub := koanf.New(".")
	if err := sub.Load(file.Provider(fpmPath), toml.Parser()); err != nil {
		return fmt.Errorf("config: load %s: %w", fpmPath, err)
	}
	cut := sub.Cut("extra.fortitude")
	return k.Load(confmap.Provider(cut.Raw(), "."), nil)
}

func applyOverrides(k *koanf.Koanf, ov Overrides) error {
	m := map[string]any{}
	if len(ov.Select) > 0 {
		setPath(m, "check.select", toAnySlice(ov.Select))
	}
	if len(ov.Ignore) > 0 {
		setPath(m, "check.ignore", toAnySlice(ov.Ignore))
	}
	if len(ov.ExtendSelect) > 0 {
		setPath(m, "check.extend-select", toAnySlice(ov.ExtendSelect))
	}
	if ov.LineLength != nil {
		setPath(m, "line-length", *ov.LineLength)
	}
	if ov.TargetStandard != "" {
		setPath(m, "target-standard", ov.TargetStandard)
	}
	if ov.Preview != nil {
		setPath(m, "preview", *ov.Preview)
	}
	if ov.Fix != nil {
		setPath(m, "check.fix", *ov.Fix)
	}
	if ov.FixUnsafe != nil {
		setPath(m, "check.unsafe-fixes", *ov.FixUnsafe)
	}
	if ov.OutputFormat != "" {
		setPath(m, "output.format", ov.OutputFormat)
	}
	if len(m) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(m, "."), nil)
}

// setPath stores value in m under the dot-separated path as one flat key;
// no nested maps are built here. confmap.Provider splits on the delimiter
// given to it, so a dotted leaf key is all that is required.
func setPath(m map[string]any, path string, value any) {
	m[path] = value
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// knownHyphenatedKeys restores hyphens that env-var underscore-splitting
// collapses, e.g. FORTITUDE_CHECK_EXTEND_SELECT -> check.extend-select.
var knownHyphenatedKeys = map[string]string{
	"extend.select":           "extend-select",
	"extend.exclude":          "extend-exclude",
	"per.file.ignores":        "per-file-ignores",
	"unsafe.fixes":            "unsafe-fixes",
	"explicit.preview.rules":  "explicit-preview-rules",
	"show.source":             "show-source",
	"respect.gitignore":       "respect-gitignore",
	"line.length":             "line-length",
	"target.standard":         "target-standard",
}

func envKeyTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}
	return s
}
