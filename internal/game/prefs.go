package game

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"projector/internal/camera"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultPrefsPath is where the editor keeps its view between runs.
const DefaultPrefsPath = "~/.projector/editor.yaml"

// Prefs is the editor state restored on the next launch.
type Prefs struct {
	CameraTarget   [3]float32 `yaml:"cameraTarget"`
	CameraYaw      float32    `yaml:"cameraYaw"`
	CameraPitch    float32    `yaml:"cameraPitch"`
	CameraDistance float32    `yaml:"cameraDistance"`
	ShowHelp       bool       `yaml:"showHelp"`
	LastScene      string     `yaml:"lastScene,omitempty"`
}

func prefsFrom(c *camera.OrbitCamera, showHelp bool, scene string) Prefs {
	return Prefs{
		CameraTarget:   [3]float32{c.Target.X, c.Target.Y, c.Target.Z},
		CameraYaw:      c.Yaw,
		CameraPitch:    c.Pitch,
		CameraDistance: c.Distance,
		ShowHelp:       showHelp,
		LastScene:      scene,
	}
}

func (p Prefs) applyTo(c *camera.OrbitCamera) {
	c.Target.X, c.Target.Y, c.Target.Z = p.CameraTarget[0], p.CameraTarget[1], p.CameraTarget[2]
	c.Yaw = p.CameraYaw
	c.Orbit(0, p.CameraPitch-c.Pitch)
	if p.CameraDistance > 0 {
		c.Distance = p.CameraDistance
		c.Zoom(0)
	}
}

// LoadPrefs reads the prefs file. A missing file is not an error.
func LoadPrefs(path string) (Prefs, bool, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Prefs{}, false, err
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return Prefs{}, false, nil
	}
	if err != nil {
		return Prefs{}, false, err
	}
	var p Prefs
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, false, fmt.Errorf("parse %s: %w", expanded, err)
	}
	return p, true, nil
}

func SavePrefs(path string, p Prefs) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o644)
}
