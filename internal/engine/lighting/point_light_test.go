package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type recorder map[string]mgl32.Vec3

func (r recorder) SetVec3(name string, v mgl32.Vec3) bool {
	r[name] = v
	return true
}

func TestNewPointLightClampsColor(t *testing.T) {
	l := NewPointLight(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1.5, -0.2, 0.5})
	if l.Color != (mgl32.Vec3{1, 0, 0.5}) {
		t.Errorf("expected clamped color, got %v", l.Color)
	}
}

func TestApply(t *testing.T) {
	r := recorder{}
	DefaultPointLight().Apply(r)

	if r[UniformPosition] != (mgl32.Vec3{2, 4, 2}) {
		t.Errorf("unexpected position %v", r[UniformPosition])
	}
	if r[UniformColor] != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("unexpected color %v", r[UniformColor])
	}
}
