// internal/config/config.go
//
// This package handles configuration and the .divider directory structure.
// Every project directory the divider runs in gets a .divider/ folder holding
// the config file, the role list and the logs.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/kingrea/class-divider/internal/export"
	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/roster"
	"github.com/kingrea/class-divider/internal/settings"
)

const (
	// AppDir is the name of the directory we create in each project
	AppDir = ".divider"

	// EnvPrefix marks environment variables that override config keys.
	// DIVIDER_DIVISION__VALUE=4 sets division.value.
	EnvPrefix = "DIVIDER_"

	defaultRolesFile = "roles.yaml"
	defaultLogLevel  = "info"
)

const defaultProjectConfigYAML = `# divider project configuration
version: 1

# Initial choice on the settings screen. mode is by-group-count or by-member-count.
division:
  mode: by-group-count
  value: 2

groups:
  # Must contain exactly one %d.
  name_format: "Group %d"

roles:
  # Relative to .divider/
  file: roles.yaml

export:
  # Relative to the project directory.
  dir: .
  filename: groups_distribution.csv

input:
  # Charset for roster files that are not UTF-8.
  fallback_encoding: windows-1251

log:
  level: info

metrics:
  # When set, a Prometheus textfile is written here on exit.
  textfile: ""
`

// DivisionConfig holds the last division choice.
type DivisionConfig struct {
	Mode  string `koanf:"mode" yaml:"mode"`
	Value int    `koanf:"value" yaml:"value"`
}

// GroupsConfig controls how groups are labelled.
type GroupsConfig struct {
	NameFormat string `koanf:"name_format" yaml:"name_format"`
}

// RolesConfig locates the role list.
type RolesConfig struct {
	File string `koanf:"file" yaml:"file"`
}

// ExportConfig controls where CSV exports land.
type ExportConfig struct {
	Dir      string `koanf:"dir" yaml:"dir"`
	Filename string `koanf:"filename" yaml:"filename"`
}

// InputConfig controls roster file decoding.
type InputConfig struct {
	FallbackEncoding string `koanf:"fallback_encoding" yaml:"fallback_encoding"`
}

// LogConfig sets the structured log level.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

// MetricsConfig controls the optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}

// ProjectConfig models .divider/config.yaml.
type ProjectConfig struct {
	Version  int            `koanf:"version" yaml:"version"`
	Division DivisionConfig `koanf:"division" yaml:"division"`
	Groups   GroupsConfig   `koanf:"groups" yaml:"groups"`
	Roles    RolesConfig    `koanf:"roles" yaml:"roles"`
	Export   ExportConfig   `koanf:"export" yaml:"export"`
	Input    InputConfig    `koanf:"input" yaml:"input"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics"`
}

// Config holds the runtime configuration for one project directory.
type Config struct {
	// ProjectDir is the directory where the user ran `divider` from
	ProjectDir string

	// AppDir is ProjectDir/.divider
	AppDir string

	Project ProjectConfig
}

// InitDir creates the .divider directory structure in the given project
// directory.
//
// Structure created:
// .divider/
// ├── config.yaml  <- project settings
// ├── roles.yaml   <- role list (written by the role store)
// └── logs/        <- structured log and journal
func InitDir(projectDir string) error {
	appDir := filepath.Join(projectDir, AppDir)
	if err := os.MkdirAll(filepath.Join(appDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(appDir, "config.yaml"))
}

// NewConfig loads the project's config file and applies environment
// overrides on top of the defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		AppDir:     filepath.Join(projectDir, AppDir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.AppDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.AppDir, "logs")
}

// RolesPath returns the role list file.
func (c *Config) RolesPath() string {
	return resolvePath(c.AppDir, c.Project.Roles.File)
}

// ExportDir returns the directory CSV exports are written to.
func (c *Config) ExportDir() string {
	return resolvePath(c.ProjectDir, c.Project.Export.Dir)
}

// MetricsTextfile returns the resolved textfile path or "" when disabled.
func (c *Config) MetricsTextfile() string {
	if strings.TrimSpace(c.Project.Metrics.Textfile) == "" {
		return ""
	}
	return resolvePath(c.AppDir, c.Project.Metrics.Textfile)
}

// Settings returns the stored division choice. The config was validated on
// load, so the mode always parses.
func (c *Config) Settings() settings.Settings {
	mode, err := settings.ParseMode(c.Project.Division.Mode)
	if err != nil {
		mode = partition.ByGroupCount
	}
	return settings.Settings{Mode: mode, Value: c.Project.Division.Value}
}

// SetSettings records the division choice and persists it back to
// .divider/config.yaml so the next session starts from it. Only the
// division keys are rewritten; environment overrides and the rest of the
// file, comments included, stay as they were.
func (c *Config) SetSettings(s settings.Settings) error {
	if !s.Mode.Valid() {
		return fmt.Errorf("config: %w", settings.ErrUnknownMode)
	}
	if s.Value < 1 {
		return fmt.Errorf("config: %w", settings.ErrValueNotPositive)
	}
	division := DivisionConfig{Mode: s.Mode.String(), Value: s.Value}
	if err := c.saveDivision(division); err != nil {
		return err
	}
	c.Project.Division = division
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}

	parsed := defaultProjectConfig()
	if err := k.UnmarshalWithConf("", &parsed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func defaultProjectConfig() ProjectConfig {
	def := settings.Default()
	return ProjectConfig{
		Version:  1,
		Division: DivisionConfig{Mode: def.Mode.String(), Value: def.Value},
		Groups:   GroupsConfig{NameFormat: partition.DefaultNameFormat},
		Roles:    RolesConfig{File: defaultRolesFile},
		Export:   ExportConfig{Dir: ".", Filename: export.DefaultFilename},
		Input:    InputConfig{FallbackEncoding: roster.DefaultFallbackEncoding},
		Log:      LogConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	def := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = def.Version
	}
	if strings.TrimSpace(pc.Division.Mode) == "" {
		pc.Division.Mode = def.Division.Mode
	}
	if pc.Division.Value == 0 {
		pc.Division.Value = def.Division.Value
	}
	if strings.TrimSpace(pc.Groups.NameFormat) == "" {
		pc.Groups.NameFormat = def.Groups.NameFormat
	}
	if strings.TrimSpace(pc.Roles.File) == "" {
		pc.Roles.File = def.Roles.File
	}
	if strings.TrimSpace(pc.Export.Dir) == "" {
		pc.Export.Dir = def.Export.Dir
	}
	if strings.TrimSpace(pc.Export.Filename) == "" {
		pc.Export.Filename = def.Export.Filename
	}
	if strings.TrimSpace(pc.Input.FallbackEncoding) == "" {
		pc.Input.FallbackEncoding = def.Input.FallbackEncoding
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = def.Log.Level
	}
}

func (pc *ProjectConfig) normalize() {
	if mode, err := settings.ParseMode(pc.Division.Mode); err == nil {
		pc.Division.Mode = mode.String()
	}
	pc.Roles.File = strings.TrimSpace(pc.Roles.File)
	pc.Export.Dir = strings.TrimSpace(pc.Export.Dir)
	pc.Export.Filename = strings.TrimSpace(pc.Export.Filename)
	pc.Input.FallbackEncoding = strings.ToLower(strings.TrimSpace(pc.Input.FallbackEncoding))
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Metrics.Textfile = strings.TrimSpace(pc.Metrics.Textfile)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if _, err := settings.ParseMode(pc.Division.Mode); err != nil {
		return fmt.Errorf("division.mode: %w", err)
	}
	if pc.Division.Value < 1 {
		return fmt.Errorf("division.value: %w", settings.ErrValueNotPositive)
	}
	if !partition.ValidNameFormat(pc.Groups.NameFormat) {
		return fmt.Errorf("groups.name_format must contain exactly one %%d, got %q", pc.Groups.NameFormat)
	}
	if strings.ContainsAny(pc.Export.Filename, `/\`) {
		return fmt.Errorf("export.filename must be a file name, got %q", pc.Export.Filename)
	}
	if _, err := zapcore.ParseLevel(pc.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

// saveDivision edits the division section of the file layer in place.
func (c *Config) saveDivision(division DivisionConfig) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		data, err = []byte(defaultProjectConfigYAML), nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if doc.Kind != yamlv3.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yamlv3.MappingNode {
		return fmt.Errorf("config: %s is not a YAML mapping", path)
	}
	section := mappingValue(doc.Content[0], "division")
	setScalar(section, "mode", "!!str", division.Mode)
	setScalar(section, "value", "!!int", strconv.Itoa(division.Value))

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.MkdirAll(c.AppDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure app dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

// mappingValue returns the mapping stored under key, adding or replacing it
// when it is missing or not a mapping.
func mappingValue(m *yamlv3.Node, key string) *yamlv3.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		v := m.Content[i+1]
		if v.Kind != yamlv3.MappingNode {
			*v = yamlv3.Node{Kind: yamlv3.MappingNode, Tag: "!!map"}
		}
		return v
	}
	v := &yamlv3.Node{Kind: yamlv3.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}

func setScalar(m *yamlv3.Node, key, tag, value string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		v := m.Content[i+1]
		v.Kind, v.Tag, v.Value, v.Style = yamlv3.ScalarNode, tag, value, 0
		v.Content = nil
		return
	}
	m.Content = append(m.Content,
		&yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: key},
		&yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: tag, Value: value},
	)
}
