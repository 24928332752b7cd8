package main

import (
	"time"

	"voxelstream/internal/config"
	"voxelstream/internal/graphics"
	"voxelstream/internal/input"
	"voxelstream/internal/meshing"
	"voxelstream/internal/streaming"
	"voxelstream/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

func setupWindow(cfg config.Window) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	// frame pacing is done by fpsLimiter
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	return window, nil
}

func newApp(window *glfw.Window, settings config.Settings, log *logrus.Logger) (*app, error) {
	store := world.NewChunkStore()
	gen := world.NewGenerator(settings.Seed)
	streamer := world.NewChunkStreamer(store, gen, settings.GenerationWorkers)
	pool := meshing.NewWorkerPool(settings.MeshWorkers, settings.MeshQueueSize)

	rd := settings.RenderDistance
	p := streaming.New(store, graphics.GLDevice{}, pool, streaming.Options{
		RenderDistance:       world.ChunkCoord{X: rd.X, Y: rd.Y, Z: rd.Z},
		EvictionLimit:        settings.EvictionLimit,
		ReselectEvery:        settings.ReselectEveryFrames,
		RemeshOnNeighborLoad: settings.RemeshOnNeighborLoad,
	}, log)
	p.SetSource(streamer)

	renderer, err := graphics.NewChunkRenderer()
	if err != nil {
		p.Shutdown()
		return nil, err
	}
	renderer.SetFog(float32(max(rd.X, rd.Z) * world.ChunkSide))

	start := mgl32.Vec3{
		float32(settings.Observer.X),
		float32(settings.Observer.Y),
		float32(settings.Observer.Z),
	}
	// keep the observer above ground at spawn
	ground := float32(gen.HeightAt(int(start.X()), int(start.Z())) + 3)
	start[1] = max(start.Y(), ground)

	width, height := window.GetFramebufferSize()
	camera := graphics.NewCamera(width, height, start)
	gl.Viewport(0, 0, int32(width), int32(height))

	im := input.NewManager()
	im.Attach(window)

	a := &app{
		window:    window,
		settings:  settings,
		log:       log,
		pipeline:  p,
		streamer:  streamer,
		renderer:  renderer,
		camera:    camera,
		input:     im,
		limiter:   &fpsLimiter{limit: settings.FPSLimit},
		showStats: true,
	}
	window.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		camera.Look(xpos, ypos)
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
		camera.SetViewport(w, h)
	})

	a.preload(settings.Preload)
	return a, nil
}

// preload generates the chunks around the spawn point before the first frame
// so the observer does not start in a void.
func (a *app) preload(radius config.Extent) {
	center := world.ChunkCoordAt(a.camera.Position)
	queued := a.streamer.RequestBox(center, world.ChunkCoord{X: radius.X, Y: radius.Y, Z: radius.Z})
	start := time.Now()
	for a.streamer.Pending() > 0 {
		a.streamer.Drain(func(g world.GeneratedChunk) {
			if err := a.pipeline.AddChunk(g.Coord, g.Blocks); err != nil {
				a.log.WithError(err).Debug("Preload chunk dropped")
			}
		})
		time.Sleep(time.Millisecond)
	}
	a.log.WithFields(logrus.Fields{
		"chunks": queued,
		"took":   time.Since(start).Round(time.Millisecond),
	}).Info("Preloaded spawn area")
}
