package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUniqueNames(t *testing.T) {
	c := NewCollection()

	for _, want := range []string{"rat", "rat_1", "rat_2"} {
		if got := c.Add(NewObject("rat", nil, nil)); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	if c.Remove("rat_1") == nil {
		t.Fatal("expected rat_1 removed")
	}
	if got := c.Add(NewObject("rat", nil, nil)); got != "rat_1" {
		t.Errorf("expected freed suffix rat_1 reused, got %s", got)
	}

	if got := strings.Join(c.Names(), ","); got != "rat,rat_2,rat_1" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestRemovePreservesIndex(t *testing.T) {
	c := NewCollection()
	for _, n := range []string{"a", "b", "c", "d"} {
		c.Add(NewObject(n, nil, nil))
	}

	if obj := c.Remove("b"); obj == nil || obj.Name != "b" {
		t.Fatalf("unexpected removed object %+v", obj)
	}
	if c.Remove("b") != nil {
		t.Error("second remove should return nil")
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 objects, got %d", c.Len())
	}
	for _, n := range []string{"a", "c", "d"} {
		if o := c.Get(n); o == nil || o.Name != n {
			t.Errorf("lookup of %s failed after removal", n)
		}
	}
	if c.Get("b") != nil {
		t.Error("removed object still reachable")
	}

	removed := c.Clear()
	if len(removed) != 3 || c.Len() != 0 || c.Get("a") != nil {
		t.Error("clear left objects behind")
	}
}

func TestTransformMatrixOrder(t *testing.T) {
	tr := IdentityTransform()
	tr.Position = mgl32.Vec3{10, 0, 0}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.SetRotationEuler(0, 90, 0)

	// Scale first, then rotate +X onto -Z, then translate.
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{10, 0, -2}
	if got.Sub(want).Len() > 1e-5 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTransformRotate(t *testing.T) {
	tr := IdentityTransform()
	tr.Rotate(90, mgl32.Vec3{0, 0, 1})
	tr.Rotate(0, mgl32.Vec3{})

	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if got.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
		t.Errorf("expected +Y, got %v", got)
	}
	if !mgl32.FloatEqualThreshold(tr.Rotation.Len(), 1, 1e-5) {
		t.Errorf("rotation not normalized: %v", tr.Rotation.Len())
	}
}

func TestTransformRotateKeepsTranslation(t *testing.T) {
	tr := IdentityTransform()
	tr.Position = mgl32.Vec3{0, 5, 0}
	tr.Rotate(180, mgl32.Vec3{0, 1, 0})

	// Rotation acts about the object origin; the zero components must stay
	// at zero within float error.
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if got.Sub(mgl32.Vec3{-1, 5, 0}).Len() > 1e-5 {
		t.Errorf("expected (-1,5,0), got %v", got)
	}
}

func TestNewObjectDefaults(t *testing.T) {
	o := NewObject("crate", nil, nil)
	if o.Color != DefaultColor || o.Transform.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.Transform.Matrix() != mgl32.Ident4() {
		t.Error("expected identity model matrix")
	}
}
