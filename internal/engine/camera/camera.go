// Package camera provides the first-person camera used to view the scene.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch limits in degrees, strictly inside (-89, 89) so forward never
// becomes parallel to the world up vector. The margin is exact in float32.
const (
	MinPitch = -89.0 + 1.0/1024
	MaxPitch = 89.0 - 1.0/1024
)

// Config holds the initial camera state and projection parameters.
type Config struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees, 0 looks down +X
	Pitch    float32 // degrees

	FOV    float32 // vertical field of view in degrees
	Aspect float32
	Near   float32
	Far    float32

	MoveSpeed   float32 // world units per second
	Sensitivity float32 // degrees per mouse unit
	InvertY     bool
}

// DefaultConfig returns a camera three units back from the origin
// looking down -Z.
func DefaultConfig() Config {
	return Config{
		Position:    mgl32.Vec3{0, 0, 3},
		Yaw:         -90,
		FOV:         70,
		Aspect:      800.0 / 600.0,
		Near:        0.1,
		Far:         1000,
		MoveSpeed:   3,
		Sensitivity: 0.1,
	}
}

// Movement is the set of held movement keys.
type Movement struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
}

// Input is one frame of camera input.
type Input struct {
	Movement  Movement
	MouseDX   float32
	MouseDY   float32
	DeltaTime float32 // seconds
}

// Camera is a yaw/pitch first-person camera.
type Camera struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	forward mgl32.Vec3
	right   mgl32.Vec3
	up      mgl32.Vec3
	worldUp mgl32.Vec3

	moveSpeed   float32
	sensitivity float32
	invertY     bool

	fov, aspect, near, far float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// New creates a camera from cfg.
func New(cfg Config) *Camera {
	c := &Camera{
		position:    cfg.Position,
		yaw:         cfg.Yaw,
		pitch:       clampPitch(cfg.Pitch),
		worldUp:     mgl32.Vec3{0, 1, 0},
		moveSpeed:   cfg.MoveSpeed,
		sensitivity: cfg.Sensitivity,
		invertY:     cfg.InvertY,
		fov:         cfg.FOV,
		aspect:      cfg.Aspect,
		near:        cfg.Near,
		far:         cfg.Far,
	}
	if c.aspect <= 0 {
		c.aspect = 1
	}
	c.updateVectors()
	c.updateView()
	c.updateProjection()
	return c
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, MinPitch, MaxPitch)
}

// ProcessInput applies mouse look and keyboard movement, then rebuilds
// the view matrix.
func (c *Camera) ProcessInput(in Input) {
	dy := in.MouseDY
	if c.invertY {
		dy = -dy
	}
	c.yaw += in.MouseDX * c.sensitivity
	// Screen Y grows downward, so moving the mouse up looks up.
	c.pitch = clampPitch(c.pitch - dy*c.sensitivity)
	c.yaw = float32(math.Mod(float64(c.yaw), 360))

	c.updateVectors()

	step := c.moveSpeed * in.DeltaTime
	if in.Movement.Forward {
		c.position = c.position.Add(c.forward.Mul(step))
	}
	if in.Movement.Back {
		c.position = c.position.Sub(c.forward.Mul(step))
	}
	if in.Movement.Right {
		c.position = c.position.Add(c.right.Mul(step))
	}
	if in.Movement.Left {
		c.position = c.position.Sub(c.right.Mul(step))
	}

	c.updateView()
}

// LookAt points the camera at target. Yaw and pitch are derived from the
// new direction so later input continues from it. The camera keeps no
// roll, so the view is built against world up and any tilt in up is
// dropped.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	dir := target.Sub(c.position)
	if dir.Len() < 1e-6 {
		return
	}
	dir = dir.Normalize()

	c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.Z()), float64(dir.X()))))
	pitch := mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1)))))
	c.pitch = clampPitch(pitch)
	c.updateVectors()
	c.updateView()
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	c.forward = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.right = c.forward.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.forward).Normalize()
}

func (c *Camera) updateView() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.forward), c.worldUp)
}

func (c *Camera) updateProjection() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
}

// SetAspect updates the projection for a new viewport shape.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateProjection()
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateView()
}

func (c *Camera) View() mgl32.Mat4       { return c.view }
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }
func (c *Camera) Position() mgl32.Vec3   { return c.position }
func (c *Camera) Forward() mgl32.Vec3    { return c.forward }
func (c *Camera) Right() mgl32.Vec3      { return c.right }
func (c *Camera) Up() mgl32.Vec3         { return c.up }
func (c *Camera) Yaw() float32           { return c.yaw }
func (c *Camera) Pitch() float32         { return c.pitch }
func (c *Camera) Aspect() float32        { return c.aspect }
