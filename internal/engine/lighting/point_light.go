// Package lighting provides the scene's point light.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names the light is pushed under.
const (
	UniformPosition = "lightPos"
	UniformColor    = "lightColor"
)

// UniformSetter is the part of a shader program the light writes to.
type UniformSetter interface {
	SetVec3(name string, v mgl32.Vec3) bool
}

// PointLight is a single light at a fixed world position.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3 // RGB, 0-1 range
}

// NewPointLight creates a light, clamping colour components to [0, 1].
func NewPointLight(position, color mgl32.Vec3) PointLight {
	for i := 0; i < 3; i++ {
		color[i] = mgl32.Clamp(color[i], 0, 1)
	}
	return PointLight{Position: position, Color: color}
}

// DefaultPointLight returns a white light above and in front of the origin.
func DefaultPointLight() PointLight {
	return PointLight{Position: mgl32.Vec3{2, 4, 2}, Color: mgl32.Vec3{1, 1, 1}}
}

// Apply writes the light uniforms to the bound program. Programs without
// lighting simply lack the uniforms.
func (l PointLight) Apply(p UniformSetter) {
	p.SetVec3(UniformPosition, l.Position)
	p.SetVec3(UniformColor, l.Color)
}
