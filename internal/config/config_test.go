package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/settings"
)

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if got := c.Settings(); got != settings.Default() {
		t.Fatalf("expected default settings, got %v", got)
	}
	if got := c.RolesPath(); got != filepath.Join(projectDir, AppDir, "roles.yaml") {
		t.Fatalf("unexpected roles path %s", got)
	}
	if got := c.ExportDir(); got != filepath.Clean(projectDir) {
		t.Fatalf("unexpected export dir %s", got)
	}
	if c.MetricsTextfile() != "" {
		t.Fatalf("metrics textfile should be disabled by default")
	}
}

func TestInitDirWritesParseableDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, AppDir, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Input.FallbackEncoding != "windows-1251" {
		t.Fatalf("wrong fallback encoding: %s", c.Project.Input.FallbackEncoding)
	}
	if c.Project.Groups.NameFormat != "Group %d" {
		t.Fatalf("wrong name format: %s", c.Project.Groups.NameFormat)
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
division:
  mode: size
  value: 4
groups:
  name_format: "Team %d"
roles:
  file: ../shared/roles.yaml
export:
  dir: exports
  filename: class.csv
metrics:
  textfile: metrics/divider.prom
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	want := settings.Settings{Mode: partition.ByMemberCount, Value: 4}
	if got := c.Settings(); got != want {
		t.Fatalf("settings = %v, want %v", got, want)
	}
	if c.Project.Division.Mode != "by-member-count" {
		t.Fatalf("mode should be normalized, got %s", c.Project.Division.Mode)
	}
	if got := c.RolesPath(); got != filepath.Join(projectDir, "shared", "roles.yaml") {
		t.Fatalf("unexpected roles path %s", got)
	}
	if got := c.ExportDir(); got != filepath.Join(projectDir, "exports") {
		t.Fatalf("unexpected export dir %s", got)
	}
	if got := c.MetricsTextfile(); got != filepath.Join(projectDir, AppDir, "metrics", "divider.prom") {
		t.Fatalf("unexpected metrics path %s", got)
	}
	if c.Project.Input.FallbackEncoding != "windows-1251" {
		t.Fatalf("missing keys should keep defaults, got %q", c.Project.Input.FallbackEncoding)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
division:
  mode: by-group-count
  value: 3
`)
	t.Setenv("DIVIDER_DIVISION__VALUE", "5")
	t.Setenv("DIVIDER_GROUPS__NAME_FORMAT", "Squad %d")
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Division.Value != 5 {
		t.Fatalf("expected env override to win, got %d", c.Project.Division.Value)
	}
	if c.Project.Groups.NameFormat != "Squad %d" {
		t.Fatalf("expected env name format, got %s", c.Project.Groups.NameFormat)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"bad mode":     "division:\n  mode: sideways\n",
		"bad value":    "division:\n  value: -3\n",
		"bad format":   "groups:\n  name_format: \"Group\"\n",
		"bad filename": "export:\n  filename: ../x.csv\n",
		"bad level":    "log:\n  level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestSetSettingsPersists(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	want := settings.Settings{Mode: partition.ByMemberCount, Value: 3}
	if err := c.SetSettings(want); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Settings(); got != want {
		t.Fatalf("reloaded settings = %v, want %v", got, want)
	}
	if err := c.SetSettings(settings.Settings{Mode: partition.ByGroupCount, Value: 0}); err == nil {
		t.Fatalf("expected invalid settings to be rejected")
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(strings.TrimSpace(body)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSetSettingsKeepsEnvOverridesOutOfFile(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	textfile := filepath.Join(t.TempDir(), "one-off.prom")
	t.Setenv("DIVIDER_LOG__LEVEL", "debug")
	t.Setenv("DIVIDER_METRICS__TEXTFILE", textfile)

	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Log.Level != "debug" || c.MetricsTextfile() != textfile {
		t.Fatalf("env overrides not applied: level=%q textfile=%q", c.Project.Log.Level, c.MetricsTextfile())
	}
	want := settings.Settings{Mode: partition.ByMemberCount, Value: 3}
	if err := c.SetSettings(want); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	if got := c.Settings(); got != want {
		t.Fatalf("in-memory settings = %v, want %v", got, want)
	}

	data, err := os.ReadFile(c.ProjectConfigPath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	body := string(data)
	for _, unwanted := range []string{"debug", "one-off.prom"} {
		if strings.Contains(body, unwanted) {
			t.Fatalf("config file picked up env override %q:\n%s", unwanted, body)
		}
	}
	for _, expected := range []string{"# divider project configuration", "mode: by-member-count", "value: 3", "level: info"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("config file missing %q:\n%s", expected, body)
		}
	}

	os.Unsetenv("DIVIDER_LOG__LEVEL")
	os.Unsetenv("DIVIDER_METRICS__TEXTFILE")
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Project.Log.Level != "info" || reloaded.MetricsTextfile() != "" {
		t.Fatalf("overrides outlived the environment: level=%q textfile=%q", reloaded.Project.Log.Level, reloaded.MetricsTextfile())
	}
	if got := reloaded.Settings(); got != want {
		t.Fatalf("reloaded settings = %v, want %v", got, want)
	}
}

func TestSetSettingsWithoutConfigFile(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	want := settings.Settings{Mode: partition.ByGroupCount, Value: 5}
	if err := c.SetSettings(want); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Settings(); got != want {
		t.Fatalf("reloaded settings = %v, want %v", got, want)
	}
	if reloaded.Project.Groups.NameFormat != "Group %d" {
		t.Fatalf("defaults should be written alongside division, got %q", reloaded.Project.Groups.NameFormat)
	}
}
