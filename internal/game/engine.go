package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/assets"
	"github.com/Faultbox/rat-engine/internal/config"
	"github.com/Faultbox/rat-engine/internal/console"
	"github.com/Faultbox/rat-engine/internal/engine/camera"
	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/engine/lighting"
	"github.com/Faultbox/rat-engine/internal/engine/renderer"
	"github.com/Faultbox/rat-engine/internal/engine/scene"
	"github.com/Faultbox/rat-engine/internal/engine/screenshot"
	"github.com/Faultbox/rat-engine/internal/logger"
)

// Engine is the state shared by the frame loop and console commands:
// camera, objects, assets and renderer. It needs a gpu.Device but no
// window.
type Engine struct {
	cfg      *config.Config
	assets   *assets.Manager
	camera   *camera.Camera
	objects  *scene.Collection
	renderer *renderer.Renderer
	console  *console.Console
	shots    *screenshot.Capture

	running bool
	elapsed float32
}

// NewEngine builds the engine context. presenter may be nil.
func NewEngine(cfg *config.Config, dev gpu.Device, presenter renderer.Presenter) *Engine {
	c := cfg.Camera
	camCfg := camera.Config{
		Position:    mgl32.Vec3(c.Position),
		Yaw:         -90,
		FOV:         c.FOV,
		Aspect:      float32(cfg.Window.Width) / float32(max(cfg.Window.Height, 1)),
		Near:        c.Near,
		Far:         c.Far,
		MoveSpeed:   c.MoveSpeed,
		Sensitivity: c.Sensitivity,
		InvertY:     c.InvertY,
	}

	e := &Engine{
		cfg:     cfg,
		assets:  assets.NewManager(cfg.Assets.Root, dev),
		camera:  camera.New(camCfg),
		objects: scene.NewCollection(),
		renderer: renderer.New(dev, presenter, renderer.Config{
			ClearColor:    mgl32.Vec4(cfg.Graphics.ClearColor),
			Light:         lighting.NewPointLight(mgl32.Vec3(cfg.Scene.LightPosition), mgl32.Vec3(cfg.Scene.LightColor)),
			StreamBuffers: cfg.Graphics.StreamBuffers,
		}),
		shots:   screenshot.New(cfg.Screenshots.Dir, "rat"),
		running: true,
	}
	e.console = console.New(e)
	e.renderer.Resize(cfg.Window.Width, cfg.Window.Height)
	logger.Info("engine ready",
		zap.String("assets", e.assets.Root()),
		zap.Bool("stream_buffers", e.renderer.Streaming()),
	)
	return e
}

// LoadStartup spawns the configured startup objects and points the
// camera at the first one. Failures are logged and skipped.
func (e *Engine) LoadStartup() {
	var first *scene.Object
	for _, asset := range e.cfg.Scene.Startup {
		name, err := e.LoadObject(asset)
		if err != nil {
			logger.Error("startup object failed", zap.String("asset", asset), zap.Error(err))
			continue
		}
		if first == nil {
			first = e.objects.Get(name)
		}
	}
	if first != nil {
		e.camera.LookAt(first.Transform.Position, mgl32.Vec3{0, 1, 0})
	}
}

// LoadObject implements console.Target.
func (e *Engine) LoadObject(asset string) (string, error) {
	obj, err := e.assets.LoadObject(asset)
	if err != nil {
		return "", err
	}
	name := e.objects.Add(obj)
	logger.Info("object spawned", zap.String("asset", asset), zap.String("name", name))
	return name, nil
}

// RemoveObject implements console.Target.
func (e *Engine) RemoveObject(name string) error {
	obj := e.objects.Remove(name)
	if obj == nil {
		return fmt.Errorf("%w: %s", console.ErrNoObject, name)
	}
	e.assets.Release(obj)
	return nil
}

// Object implements console.Target.
func (e *Engine) Object(name string) *scene.Object {
	return e.objects.Get(name)
}

// Objects implements console.Target.
func (e *Engine) Objects() []*scene.Object {
	return e.objects.Objects()
}

// Screenshot implements console.Target. The file is written after the
// next frame is drawn.
func (e *Engine) Screenshot() {
	e.renderer.CaptureNext(func(pixels []byte, width, height int) {
		path, err := e.shots.Save(pixels, width, height)
		if err != nil {
			logger.Error("screenshot failed", zap.Error(err))
			return
		}
		logger.Info("screenshot saved", zap.String("path", path))
	})
}

// Quit implements console.Target.
func (e *Engine) Quit() {
	e.running = false
}

// Running reports whether the engine should keep producing frames.
func (e *Engine) Running() bool {
	return e.running
}

// Execute runs a console command line.
func (e *Engine) Execute(line string) error {
	return e.console.Execute(line)
}

// Console returns the command interpreter.
func (e *Engine) Console() *console.Console {
	return e.console
}

// Camera returns the view camera.
func (e *Engine) Camera() *camera.Camera {
	return e.camera
}

// Resize updates the viewport and projection.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
}

// Frame advances the camera by one frame of input and renders the scene.
func (e *Engine) Frame(in camera.Input) (renderer.Stats, error) {
	e.camera.ProcessInput(in)
	e.elapsed += in.DeltaTime
	return e.renderer.Render(e.objects.Objects(), e.camera, e.elapsed)
}

// Close releases every object and cached resource.
func (e *Engine) Close() {
	for _, obj := range e.objects.Clear() {
		e.assets.Release(obj)
	}
	e.assets.Close()
}
