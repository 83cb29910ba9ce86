package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the app looks for its config when no flag is given.
const DefaultPath = "~/.projector/config.yaml"

type Config struct {
	Window  Window  `yaml:"window"`
	Physics Physics `yaml:"physics"`
	Editor  Editor  `yaml:"editor"`
	Scene   Scene   `yaml:"scene"`
	Log     Log     `yaml:"log"`
}

type Window struct {
	Width     int32  `yaml:"width"`
	Height    int32  `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int32  `yaml:"targetFPS"`
}

type Physics struct {
	Gravity          float32 `yaml:"gravity"`
	FixedTimestep    float32 `yaml:"fixedTimestep"`
	MaxSubSteps      int     `yaml:"maxSubSteps"`
	SolverIterations int     `yaml:"solverIterations"`
	GroundY          float32 `yaml:"groundY"`
}

type Editor struct {
	SpawnHeight             float32 `yaml:"spawnHeight"`
	DefaultStiffness        float32 `yaml:"defaultStiffness"`
	MotorForce              float32 `yaml:"motorForce"`
	MotorDirectionSpeed     float32 `yaml:"motorDirectionSpeed"`
	DualMotorForce          float32 `yaml:"dualMotorForce"`
	DualMotorDirectionSpeed float32 `yaml:"dualMotorDirectionSpeed"`
	MassScale               float32 `yaml:"massScale"` // grams to kg
	SizeScale               float32 `yaml:"sizeScale"` // cm to m
}

type Scene struct {
	Path     string `yaml:"path"`
	AssetDir string `yaml:"assetDir"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "Projector",
			TargetFPS: 60,
		},
		Physics: Physics{
			Gravity:          -9.82,
			FixedTimestep:    1.0 / 60.0,
			MaxSubSteps:      3,
			SolverIterations: 10,
			GroundY:          0,
		},
		Editor: Editor{
			SpawnHeight:             10,
			DefaultStiffness:        50,
			MotorForce:              10,
			MotorDirectionSpeed:     2,
			DualMotorForce:          20,
			DualMotorDirectionSpeed: 3,
			MassScale:               0.001,
			SizeScale:               0.01,
		},
		Scene: Scene{
			Path:     "scene.json",
			AssetDir: "assets/models",
		},
		Log: Log{Level: "info"},
	}
}

// Decode reads YAML over the defaults, so omitted keys keep their default values.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the config at path. A missing file yields Default().
func Load(path string) (Config, error) {
	expanded, err := Expand(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", expanded, err)
	}
	base := filepath.Dir(expanded)
	c.Scene.Path = resolve(base, c.Scene.Path)
	c.Scene.AssetDir = resolve(base, c.Scene.AssetDir)
	return c, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	if c.Physics.FixedTimestep <= 0 {
		return fmt.Errorf("physics.fixedTimestep must be positive, got %v", c.Physics.FixedTimestep)
	}
	if c.Physics.MaxSubSteps < 1 {
		return fmt.Errorf("physics.maxSubSteps must be at least 1, got %d", c.Physics.MaxSubSteps)
	}
	if c.Physics.SolverIterations < 1 {
		return fmt.Errorf("physics.solverIterations must be at least 1, got %d", c.Physics.SolverIterations)
	}
	if c.Editor.DefaultStiffness < 0 || c.Editor.DefaultStiffness > 100 {
		return fmt.Errorf("editor.defaultStiffness must be in [0,100], got %v", c.Editor.DefaultStiffness)
	}
	return nil
}

// Expand resolves a leading ~ to the user's home directory.
func Expand(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return expanded, nil
}

// resolve makes relative paths relative to the config file's directory.
func resolve(base, path string) string {
	if path == "" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	if filepath.IsAbs(expanded) {
		return expanded
	}
	return filepath.Join(base, expanded)
}
