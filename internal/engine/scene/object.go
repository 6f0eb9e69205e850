package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rat-engine/internal/engine/material"
	"github.com/Faultbox/rat-engine/internal/engine/mesh"
)

// DefaultColor is the base colour of objects that do not set one.
var DefaultColor = mgl32.Vec3{0.8, 0.8, 0.8}

// Transform places an object in world space.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat // kept normalized
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns translation × rotation × scale.
func (t Transform) Matrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rot := t.Rotation.Normalize().Mat4()
	sc := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(rot).Mul4(sc)
}

// SetRotationEuler sets the rotation from Euler angles in degrees,
// applied in X, Y, Z order.
func (t *Transform) SetRotationEuler(x, y, z float32) {
	t.Rotation = mgl32.AnglesToQuat(
		mgl32.DegToRad(x), mgl32.DegToRad(y), mgl32.DegToRad(z),
		mgl32.XYZ,
	).Normalize()
}

// Rotate applies an additional rotation of angle degrees around axis.
func (t *Transform) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(angle), axis.Normalize())
	t.Rotation = q.Mul(t.Rotation).Normalize()
}

// Object is a drawable instance: a mesh, a material and a placement.
type Object struct {
	Name      string
	Source    string // asset name it was loaded from
	Mesh      *mesh.Resource
	Material  *material.Material
	Transform Transform
	Weight    float32
	Color     mgl32.Vec3
}

// NewObject creates an object with an identity transform and the default
// colour.
func NewObject(name string, m *mesh.Resource, mat *material.Material) *Object {
	return &Object{
		Name:      name,
		Source:    name,
		Mesh:      m,
		Material:  mat,
		Transform: IdentityTransform(),
		Color:     DefaultColor,
	}
}
