// Package renderer draws scene objects through a gpu.Device.
package renderer

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/engine/camera"
	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/engine/lighting"
	"github.com/Faultbox/rat-engine/internal/engine/scene"
	"github.com/Faultbox/rat-engine/internal/logger"
)

// Uniform names pushed for every object.
const (
	UniformModel       = "model"
	UniformView        = "view"
	UniformProjection  = "projection"
	UniformViewPos     = "viewPos"
	UniformObjectColor = "objectColor"
	UniformTime        = "time"
)

// Frame state errors.
var (
	ErrFrameActive   = errors.New("frame already begun")
	ErrFrameInactive = errors.New("no frame in progress")
)

// Presenter shows the finished frame, typically by swapping buffers.
type Presenter interface {
	SwapBuffers()
}

// Config holds renderer configuration.
type Config struct {
	ClearColor mgl32.Vec4
	Light      lighting.PointLight

	// StreamBuffers uploads every mesh before its draw and releases it
	// right after, instead of keeping buffers for the mesh lifetime.
	StreamBuffers bool
}

// DefaultConfig returns the default clear colour and light.
func DefaultConfig() Config {
	return Config{
		ClearColor: mgl32.Vec4{0.3, 0.3, 0.5, 1.0},
		Light:      lighting.DefaultPointLight(),
	}
}

// Stats counts the work done in one frame.
type Stats struct {
	Objects   int
	Skipped   int
	DrawCalls int
}

// Renderer owns per-frame GPU state.
type Renderer struct {
	dev       gpu.Device
	presenter Presenter
	config    Config

	inFrame bool
	stats   Stats
	frames  uint64

	width, height int
	capture       CaptureFunc
}

// CaptureFunc receives the finished frame as RGBA rows, bottom row first.
type CaptureFunc func(pixels []byte, width, height int)

// New creates a renderer. presenter may be nil when nothing is shown.
func New(dev gpu.Device, presenter Presenter, cfg Config) *Renderer {
	r := &Renderer{dev: dev, presenter: presenter, config: cfg}
	dev.SetClearColor(cfg.ClearColor)
	return r
}

// SetLight replaces the scene light.
func (r *Renderer) SetLight(l lighting.PointLight) {
	r.config.Light = l
}

// Light returns the scene light.
func (r *Renderer) Light() lighting.PointLight {
	return r.config.Light
}

// Streaming reports whether buffers are released after every draw.
func (r *Renderer) Streaming() bool {
	return r.config.StreamBuffers
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.dev.Viewport(width, height)
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame by clearing colour and depth.
func (r *Renderer) Begin() error {
	if r.inFrame {
		return ErrFrameActive
	}
	r.inFrame = true
	r.stats = Stats{}
	r.dev.Clear()
	return nil
}

// Draw binds obj's buffers, program and material, pushes its uniforms and
// issues the draw. Objects without a mesh or material are skipped.
func (r *Renderer) Draw(obj *scene.Object, cam *camera.Camera, elapsed float32) error {
	if !r.inFrame {
		return ErrFrameInactive
	}
	r.stats.Objects++
	if obj.Mesh == nil || obj.Material == nil || obj.Material.Program() == nil {
		r.stats.Skipped++
		return nil
	}

	obj.Mesh.Upload(r.dev)

	prog := obj.Material.Program()
	prog.Use()
	obj.Material.Activate(r.dev)

	prog.SetMat4(UniformModel, obj.Transform.Matrix())
	prog.SetMat4(UniformView, cam.View())
	prog.SetMat4(UniformProjection, cam.Projection())
	r.config.Light.Apply(prog)
	prog.SetVec3(UniformViewPos, cam.Position())
	prog.SetVec3(UniformObjectColor, obj.Color)
	prog.SetFloat(UniformTime, elapsed)

	r.stats.DrawCalls += obj.Mesh.Draw(r.dev)

	if r.config.StreamBuffers {
		obj.Mesh.Release(r.dev)
	}
	return nil
}

// End finishes the frame and presents it.
func (r *Renderer) End() (Stats, error) {
	if !r.inFrame {
		return Stats{}, ErrFrameInactive
	}
	r.inFrame = false
	if r.capture != nil {
		fn := r.capture
		r.capture = nil
		fn(r.dev.ReadPixels(r.width, r.height), r.width, r.height)
	}
	if r.presenter != nil {
		r.presenter.SwapBuffers()
	}
	r.frames++
	if r.frames%600 == 0 {
		logger.Debug("frame stats",
			zap.Uint64("frame", r.frames),
			zap.Int("objects", r.stats.Objects),
			zap.Int("draw_calls", r.stats.DrawCalls),
		)
	}
	return r.stats, nil
}

// Render draws a complete frame: clear, every object in order, present.
func (r *Renderer) Render(objects []*scene.Object, cam *camera.Camera, elapsed float32) (Stats, error) {
	if err := r.Begin(); err != nil {
		return Stats{}, err
	}
	for _, obj := range objects {
		if err := r.Draw(obj, cam, elapsed); err != nil {
			return r.stats, err
		}
	}
	return r.End()
}

// CaptureNext arranges for fn to receive the next finished frame before it
// is presented. A later call replaces a pending one.
func (r *Renderer) CaptureNext(fn CaptureFunc) {
	r.capture = fn
}

// Frames returns the number of frames presented.
func (r *Renderer) Frames() uint64 {
	return r.frames
}
