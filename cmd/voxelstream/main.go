package main

import (
	"flag"
	"runtime"
	"time"

	"voxelstream/internal/config"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "voxelstream.toml", "settings file (.toml, .yaml or .yml)")
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	log.Level = settings.Level()

	if err := glfw.Init(); err != nil {
		log.Fatalf("Error initialising GLFW: %v", err)
	}

	window, err := setupWindow(settings.Window)
	if err != nil {
		log.Fatalf("Error creating window: %v", err)
	}

	a, err := newApp(window, settings, log)
	if err != nil {
		log.Fatalf("Error setting up: %v", err)
	}

	// closer runs its hooks on its own goroutine and then calls os.Exit, so
	// the GL teardown happens here before it is released.
	exit := newExitHandshake(&a.quit, 3*time.Second, log)
	closer.Bind(exit.onSignal)

	a.run()
	exit.finish(a.shutdown, glfw.Terminate)
	closer.Close()
}
