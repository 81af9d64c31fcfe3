package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/config"
	"github.com/fortitude-sh/fortitude/internal/rules"

	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/meta"
	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/stable"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 132, cfg.LineLength)
	assert.Equal(t, "f2018", cfg.TargetStandard)
	assert.True(t, cfg.RespectGitignore)
	assert.Equal(t, "concise", cfg.Output.Format)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFindsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, filepath.Join(dir, "fortitude.toml"), "line-length = 100\n")

	found := config.Discover(sub)
	assert.Equal(t, filepath.Join(dir, "fortitude.toml"), found)
}

func TestDiscoverFallsBackToFpmToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fpm.toml"), "name = \"demo\"\n\n[extra.fortitude]\nline-length = 100\n")

	found := config.Discover(dir)
	assert.Equal(t, filepath.Join(dir, "fpm.toml"), found)
}

func TestDiscoverIgnoresFpmWithoutFortitudeTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fpm.toml"), "name = \"demo\"\n")

	assert.Equal(t, "", config.Discover(dir))
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fortitude.toml"), "line-length = 100\ntarget-standard = \"f95\"\n")

	cfg, err := config.Load(dir, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.LineLength)
	assert.Equal(t, "f95", cfg.TargetStandard)
	assert.True(t, cfg.RespectGitignore, "unset keys keep their default")
}

func TestLoadCLIOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fortitude.toml"), "line-length = 100\n")

	override := 40
	cfg, err := config.Load(dir, config.Overrides{LineLength: &override})
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.LineLength)
}

func TestLoadExplicitConfigPathBypassesDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fortitude.toml"), "line-length = 100\n")
	explicit := filepath.Join(dir, "other.toml")
	writeFile(t, explicit, "line-length = 7\n")

	cfg, err := config.Load(dir, config.Overrides{ConfigPath: explicit})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.LineLength)
}

func TestLoadSelectOverride(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir, config.Overrides{Select: []string{"S002"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"S002"}, cfg.Check.Select)
}

func TestResolveBuildsRuleTable(t *testing.T) {
	cfg := config.Default()
	cfg.Check.Select = []string{"S002"}

	settings, warnings, err := config.Resolve(cfg, rules.DefaultRegistry())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, settings.RuleEnabled("S002"))
	assert.Equal(t, []string{"S002"}, settings.EnabledRules())
}

func TestResolveUnknownSelectorErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Check.Select = []string{"ZZZ999"}

	_, _, err := config.Resolve(cfg, rules.DefaultRegistry())
	assert.Error(t, err)
}

func TestSettingsPerFileIgnore(t *testing.T) {
	cfg := config.Default()
	cfg.Check.Select = []string{"S002"}
	cfg.Check.PerFileIgnores = map[string][]string{
		"vendor/**": {"S002"},
	}

	settings, _, err := config.Resolve(cfg, rules.DefaultRegistry())
	require.NoError(t, err)
	assert.True(t, settings.IsRuleIgnoredForPath("vendor/thirdparty.f90", "S002"))
	assert.False(t, settings.IsRuleIgnoredForPath("src/main.f90", "S002"))
}
