// Package config loads the settings of the streaming client.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for settings that cannot be clamped into range.
var ErrInvalid = errors.New("invalid config")

const (
	minRenderDistance = 1
	maxRenderDistance = 32
)

// Extent is a per-axis chunk count.
type Extent struct {
	X int `toml:"x" yaml:"x"`
	Y int `toml:"y" yaml:"y"`
	Z int `toml:"z" yaml:"z"`
}

// Position is a world-space position in blocks.
type Position struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	Z float64 `toml:"z" yaml:"z"`
}

// Window holds window creation settings.
type Window struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
}

// Settings holds every tunable of the client.
type Settings struct {
	// RenderDistance is the half-extent of the drawn chunk box.
	RenderDistance Extent `toml:"render_distance" yaml:"render_distance"`
	// EvictionLimit is the number of chunk buffers kept on the device.
	EvictionLimit int `toml:"eviction_limit" yaml:"eviction_limit"`
	// ReselectEveryFrames is the eviction and selection cadence.
	ReselectEveryFrames int `toml:"reselect_every_frames" yaml:"reselect_every_frames"`

	MeshWorkers          int  `toml:"mesh_workers" yaml:"mesh_workers"`
	MeshQueueSize        int  `toml:"mesh_queue_size" yaml:"mesh_queue_size"`
	GenerationWorkers    int  `toml:"generation_workers" yaml:"generation_workers"`
	RemeshOnNeighborLoad bool `toml:"remesh_on_neighbor_load" yaml:"remesh_on_neighbor_load"`

	Seed        int64  `toml:"seed" yaml:"seed"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	SlowFrameMS int    `toml:"slow_frame_ms" yaml:"slow_frame_ms"`
	// FPSLimit caps the frame rate; 0 disables the cap.
	FPSLimit int `toml:"fps_limit" yaml:"fps_limit"`
	// MoveSpeed is the observer speed in blocks per second.
	MoveSpeed float64 `toml:"move_speed" yaml:"move_speed"`

	Window   Window   `toml:"window" yaml:"window"`
	Observer Position `toml:"observer" yaml:"observer"`
	// Preload is the chunk box generated around the observer before the
	// first frame.
	Preload Extent `toml:"preload" yaml:"preload"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		RenderDistance:       Extent{X: 8, Y: 4, Z: 8},
		EvictionLimit:        4096,
		ReselectEveryFrames:  10,
		MeshWorkers:          0,
		MeshQueueSize:        256,
		GenerationWorkers:    0,
		RemeshOnNeighborLoad: true,
		Seed:                 1337,
		LogLevel:             "info",
		SlowFrameMS:          50,
		FPSLimit:             120,
		MoveSpeed:            72,
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "voxelstream",
		},
		Observer: Position{X: 8, Y: 80, Z: 8},
		Preload:  Extent{X: 2, Y: 1, Z: 2},
	}
}

// Load reads settings from path, picking the codec from the file extension.
// If the file does not exist it is created with the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	ext := strings.ToLower(filepath.Ext(path))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := encode(ext, s)
		if err != nil {
			return s, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return s, fmt.Errorf("create config: %w", err)
		}
		return s, s.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := decode(ext, data, &s); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func encode(ext string, s Settings) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch ext {
	case ".toml":
		data, err = toml.Marshal(s)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("encode default config: %w", err)
	}
	return data, nil
}

func decode(ext string, data []byte, s *Settings) error {
	var err error
	switch ext {
	case ".toml":
		err = toml.Unmarshal(data, s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, s)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate clamps numeric settings into range and rejects values that have
// no sensible clamp.
func (s *Settings) Validate() error {
	s.RenderDistance.X = clamp(s.RenderDistance.X, minRenderDistance, maxRenderDistance)
	s.RenderDistance.Y = clamp(s.RenderDistance.Y, minRenderDistance, maxRenderDistance)
	s.RenderDistance.Z = clamp(s.RenderDistance.Z, minRenderDistance, maxRenderDistance)

	s.EvictionLimit = max(s.EvictionLimit, 1)
	s.ReselectEveryFrames = max(s.ReselectEveryFrames, 1)
	s.MeshQueueSize = max(s.MeshQueueSize, 1)
	s.SlowFrameMS = max(s.SlowFrameMS, 1)
	s.FPSLimit = max(s.FPSLimit, 0)
	if s.MoveSpeed <= 0 {
		s.MoveSpeed = Default().MoveSpeed
	}
	s.MeshWorkers = workers(s.MeshWorkers)
	s.GenerationWorkers = workers(s.GenerationWorkers)

	s.Preload.X = max(s.Preload.X, 0)
	s.Preload.Y = max(s.Preload.Y, 0)
	s.Preload.Z = max(s.Preload.Z, 0)

	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, s.Window.Width, s.Window.Height)
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, s.LogLevel)
	}
	return nil
}

// Level returns the configured log level.
func (s Settings) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func workers(n int) int {
	if n == 0 {
		return max(runtime.NumCPU(), 1)
	}
	return max(n, 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
