package main

import (
	"time"

	"voxelstream/internal/config"
	"voxelstream/internal/graphics"
	"voxelstream/internal/input"
	"voxelstream/internal/physics"
	"voxelstream/internal/profiling"
	"voxelstream/internal/streaming"
	"voxelstream/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const statsEveryFrames = 60

type app struct {
	window   *glfw.Window
	settings config.Settings
	log      *logrus.Logger

	pipeline *streaming.Pipeline
	streamer *world.ChunkStreamer
	renderer *graphics.ChunkRenderer
	camera   *graphics.Camera
	input    *input.Manager
	limiter  *fpsLimiter

	quit      atomic.Bool
	wireframe bool
	showStats bool

	frames    int
	lastStats time.Time
	lastTime  time.Time
}

func (a *app) run() {
	a.lastTime = time.Now()
	a.lastStats = time.Now()
	for !a.window.ShouldClose() && !a.quit.Load() {
		a.tick()
	}
}

func (a *app) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
	a.handleInput(dt)

	a.pipeline.SetObserver(a.camera.Position)
	a.pipeline.Frame()

	gl.ClearColor(a.renderer.FogColor.X(), a.renderer.FogColor.Y(), a.renderer.FogColor.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if a.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	a.renderer.Render(a.camera.ViewMatrix(), a.camera.ProjectionMatrix(), a.pipeline.Draw)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
	a.input.PostUpdate()

	a.frames++
	if a.frames%statsEveryFrames == 0 {
		a.logStats()
	}
	if took := time.Since(now); took > time.Duration(a.settings.SlowFrameMS)*time.Millisecond {
		a.log.WithFields(logrus.Fields{
			"took":   took.Round(time.Microsecond),
			"stages": profiling.TopN(5),
		}).Info("Slow frame")
	}

	a.limiter.Wait()
}

func (a *app) handleInput(dt float64) {
	im := a.input
	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		a.wireframe = !a.wireframe
	}
	if im.JustPressed(input.ActionToggleStats) {
		a.showStats = !a.showStats
	}

	speed := float32(a.settings.MoveSpeed * dt)
	if im.IsActive(input.ActionBoost) {
		speed *= 4
	}
	front := a.camera.Front()
	flat := mgl32.Vec3{front.X(), 0, front.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	right := a.camera.Right()

	var move mgl32.Vec3
	if im.IsActive(input.ActionMoveForward) {
		move = move.Add(flat)
	}
	if im.IsActive(input.ActionMoveBackward) {
		move = move.Sub(flat)
	}
	if im.IsActive(input.ActionMoveRight) {
		move = move.Add(right)
	}
	if im.IsActive(input.ActionMoveLeft) {
		move = move.Sub(right)
	}
	if im.IsActive(input.ActionMoveUp) {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if im.IsActive(input.ActionMoveDown) {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}
	if move.Len() > 0 {
		a.camera.Position = a.camera.Position.Add(move.Normalize().Mul(speed))
	}

	if im.JustPressed(input.ActionBreakBlock) {
		a.editTarget(world.BlockAir, false)
	}
	if im.JustPressed(input.ActionPlaceBlock) {
		a.editTarget(world.BlockStone, true)
	}
}

// editTarget sets the block under the crosshair, or the empty cell in front
// of it when adjacent is true.
func (a *app) editTarget(id world.BlockID, adjacent bool) {
	hit := physics.Raycast(a.camera.Position, a.camera.Front(), physics.MinReachDistance, physics.MaxReachDistance, a.pipeline.Store())
	if !hit.Hit {
		return
	}
	pos := hit.HitPosition
	if adjacent {
		pos = hit.AdjacentPosition
	}
	if err := a.pipeline.SetBlock(pos[0], pos[1], pos[2], id); err != nil {
		a.log.WithError(err).Debug("Block edit ignored")
	}
}

func (a *app) logStats() {
	elapsed := time.Since(a.lastStats).Seconds()
	a.lastStats = time.Now()
	if !a.showStats || elapsed <= 0 {
		return
	}
	a.log.WithFields(a.pipeline.Stats().Fields()).WithFields(logrus.Fields{
		"fps":    int(statsEveryFrames / elapsed),
		"drawn":  a.renderer.Drawn,
		"culled": a.renderer.Culled,
	}).Info("Frame stats")
}

func (a *app) shutdown() {
	a.renderer.Dispose()
	a.pipeline.Shutdown()
}
