package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

func validDefault(t *testing.T) Settings {
	t.Helper()
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	return s
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	for _, name := range []string{"client.toml", "client.yaml", "client.yml"} {
		path := filepath.Join(t.TempDir(), name)

		s, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if diff := pretty.Diff(s, validDefault(t)); len(diff) > 0 {
			t.Fatalf("%s: defaults differ: %v", name, diff)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s: default file not written: %v", name, err)
		}

		again, err := Load(path)
		if err != nil {
			t.Fatalf("%s: reload: %v", name, err)
		}
		if diff := pretty.Diff(again, s); len(diff) > 0 {
			t.Fatalf("%s: reload differs: %v", name, diff)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	data := `
eviction_limit = 512
reselect_every_frames = 4
remesh_on_neighbor_load = false
log_level = "debug"

[render_distance]
x = 6
y = 2
z = 6

[observer]
x = 0.5
y = 64.0
z = -3.25
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.RenderDistance != (Extent{X: 6, Y: 2, Z: 6}) {
		t.Fatalf("render distance = %+v", s.RenderDistance)
	}
	if s.EvictionLimit != 512 || s.ReselectEveryFrames != 4 || s.RemeshOnNeighborLoad {
		t.Fatalf("scalars not decoded: %# v", pretty.Formatter(s))
	}
	if s.Observer != (Position{X: 0.5, Y: 64, Z: -3.25}) {
		t.Fatalf("observer = %+v", s.Observer)
	}
	if s.Level() != logrus.DebugLevel {
		t.Fatalf("level = %v", s.Level())
	}
	// keys absent from the file keep their defaults
	if s.Seed != 1337 || s.MeshQueueSize != 256 {
		t.Fatalf("defaults lost: seed=%d queue=%d", s.Seed, s.MeshQueueSize)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	data := `
render_distance: {x: 3, y: 3, z: 3}
mesh_workers: 2
window:
  width: 800
  height: 600
  title: test
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := validDefault(t)
	want.RenderDistance = Extent{X: 3, Y: 3, Z: 3}
	want.MeshWorkers = 2
	want.Window = Window{Width: 800, Height: 600, Title: "test"}
	if diff := pretty.Diff(s, want); len(diff) > 0 {
		t.Fatalf("settings differ: %v", diff)
	}
}

func TestValidateClamps(t *testing.T) {
	s := Default()
	s.RenderDistance = Extent{X: 0, Y: 100, Z: -4}
	s.EvictionLimit = -1
	s.ReselectEveryFrames = 0
	s.MeshWorkers = -3
	s.GenerationWorkers = 0
	s.Preload = Extent{X: -1, Y: 2, Z: 0}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if s.RenderDistance != (Extent{X: 1, Y: 32, Z: 1}) {
		t.Fatalf("render distance = %+v", s.RenderDistance)
	}
	if s.EvictionLimit != 1 || s.ReselectEveryFrames != 1 || s.MeshWorkers != 1 {
		t.Fatalf("lower bounds not applied: %+v", s)
	}
	if s.GenerationWorkers != max(runtime.NumCPU(), 1) {
		t.Fatalf("generation workers = %d, want NumCPU", s.GenerationWorkers)
	}
	if s.Preload != (Extent{X: 0, Y: 2, Z: 0}) {
		t.Fatalf("preload = %+v", s.Preload)
	}
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero window", func(s *Settings) { s.Window.Width = 0 }},
		{"log level", func(s *Settings) { s.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		s := Default()
		tt.mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: err = %v, want ErrInvalid", tt.name, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "client.ini")); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown extension: err = %v, want ErrInvalid", err)
	}
}
