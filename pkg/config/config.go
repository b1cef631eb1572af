// Package config loads the optional uikit.yaml that tunes a collection's
// layout defaults, logging and scene transitions.
//
// A missing file is not an error: [LoadOptional] returns an empty [Config]
// and [Resolve] fills in defaults. A typical file:
//
//	version: v1
//	layout:
//	  direction: vertical
//	  sectionInset: {top: 8, left: 16, bottom: 8, right: 16}
//	  minimumLineSpacing: 4
//	log:
//	  level: debug
//	scene:
//	  transitionDuration: 250ms
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/uikit/pkg/collection"
	uierrors "github.com/go-drift/uikit/pkg/errors"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/scene"
)

// FileName is the configuration file looked up in a project directory.
const FileName = "uikit.yaml"

// DefaultVersion is assumed when the file does not name one.
const DefaultVersion = "v1"

// Config represents the optional uikit.yaml configuration.
type Config struct {
	Version string       `yaml:"version,omitempty"`
	Layout  LayoutConfig `yaml:"layout"`
	Log     LogConfig    `yaml:"log"`
	Scene   SceneConfig  `yaml:"scene"`
}

// LayoutConfig contains flow layout defaults.
type LayoutConfig struct {
	Direction               string       `yaml:"direction,omitempty"`
	SectionInset            InsetsConfig `yaml:"sectionInset"`
	MinimumLineSpacing      float64      `yaml:"minimumLineSpacing,omitempty"`
	MinimumInteritemSpacing float64      `yaml:"minimumInteritemSpacing,omitempty"`
}

// InsetsConfig is a set of edge insets.
type InsetsConfig struct {
	Top    float64 `yaml:"top,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
	Bottom float64 `yaml:"bottom,omitempty"`
	Right  float64 `yaml:"right,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// SceneConfig contains scene manager settings.
type SceneConfig struct {
	TransitionDuration string `yaml:"transitionDuration,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string
	Version    string

	Layout             collection.FlowLayout
	LogLevel           slog.Level
	TransitionDuration time.Duration
}

// LoadOptional reads uikit.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, uierrors.New("config.LoadOptional", uierrors.KindConfig,
			fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, uierrors.New("config.LoadOptional", uierrors.KindConfig,
			fmt.Errorf("failed to parse %s: %w", FileName, err))
	}

	return &cfg, nil
}

// Resolve loads uikit.yaml (if present), resolves defaults and validates
// the result. The module path is read from go.mod when dir has one.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, uierrors.New("config.Resolve", uierrors.KindConfig, err)
	}
	r, err := cfg.resolve()
	if err != nil {
		return nil, uierrors.New("config.Resolve", uierrors.KindConfig, err)
	}
	r.Root = dir
	r.ModulePath = modulePath
	r.AppName = defaultAppName(modulePath, dir)
	return r, nil
}

func (cfg *Config) resolve() (*Resolved, error) {
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	if err := validateVersion(version); err != nil {
		return nil, err
	}

	direction, err := parseDirection(cfg.Layout.Direction)
	if err != nil {
		return nil, err
	}
	if cfg.Layout.MinimumLineSpacing < 0 || cfg.Layout.MinimumInteritemSpacing < 0 {
		return nil, fmt.Errorf("layout spacing cannot be negative")
	}

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	duration := scene.DefaultTransitionDuration
	if s := strings.TrimSpace(cfg.Scene.TransitionDuration); s != "" {
		duration, err = time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("scene.transitionDuration: %w", err)
		}
		if duration < 0 {
			return nil, fmt.Errorf("scene.transitionDuration cannot be negative (got %s)", s)
		}
	}

	in := cfg.Layout.SectionInset
	return &Resolved{
		Version: version,
		Layout: collection.FlowLayout{
			Direction:               direction,
			SectionInset:            geometry.EdgeInsets{Top: in.Top, Left: in.Left, Bottom: in.Bottom, Right: in.Right},
			MinimumLineSpacing:      cfg.Layout.MinimumLineSpacing,
			MinimumInteritemSpacing: cfg.Layout.MinimumInteritemSpacing,
		},
		LogLevel:           level,
		TransitionDuration: duration,
	}, nil
}

// Logger returns a text logger writing to w at the configured level. A
// non-nil level is set to that level and shared with the handler, so a
// running logger follows later reloads through level.Set.
func (r *Resolved) Logger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	var leveler slog.Leveler = r.LogLevel
	if level != nil {
		level.Set(r.LogLevel)
		leveler = level
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: leveler}))
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func validateVersion(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("version must be a semantic version such as v1 or v1.2.0 (got %q)", version)
	}
	if major := semver.Major(version); major != "v1" {
		return fmt.Errorf("unsupported config version %s (this release reads v1)", major)
	}
	return nil
}

func parseDirection(s string) (geometry.ScrollDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertical":
		return geometry.Vertical, nil
	case "horizontal":
		return geometry.Horizontal, nil
	default:
		return 0, fmt.Errorf("layout.direction must be vertical or horizontal (got %q)", s)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn or error (got %q)", s)
	}
}

// modulePath returns "" when dir has no go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "uikit_app"
	}
	return base
}
