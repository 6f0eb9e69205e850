package assets

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rat-engine/internal/engine/gpu/gputest"
	"github.com/Faultbox/rat-engine/internal/engine/shader"
	"github.com/Faultbox/rat-engine/pkg/formats"
)

const cubeOBJ = `
o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
o broken
f 1 2 99
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestAssets(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "shaders/default.vert", "void main() {}")
	writeFile(t, root, "shaders/default.frag", "void main() {}")
	writeFile(t, root, "shaders/broken.vert", "void main() { syntax error }")
	writeFile(t, root, "shaders/broken.frag", "void main() {}")
	writeFile(t, root, "models/cube.obj", cubeOBJ)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "textures/fur.png", buf.String())

	writeFile(t, root, "materials/default.mat", "name = default\nshader = default\ntexture = none\n")
	writeFile(t, root, "materials/fur.mat", "name = fur\nshader = default\ntexture = fur.png\n")
	writeFile(t, root, "materials/broken.mat", "name = broken\nshader = broken\n")
	writeFile(t, root, "materials/badtex.mat", "shader = default\ntexture = missing.png\n")

	writeFile(t, root, "objects/rat.robj", "name = rat\nmodel = cube\nmaterial = fur\nweight = 12.5\ncolor = 1, 0.5, 0\n")
	writeFile(t, root, "objects/crate.robj", "name = crate\nmodel = cube\nmaterial = default\n")
	writeFile(t, root, "objects/nomaterial.robj", "name = x\nmodel = cube\n")
	writeFile(t, root, "objects/badshader.robj", "model = cube\nmaterial = broken\n")
	return root
}

func TestLoadObject(t *testing.T) {
	dev := gputest.New()
	m := NewManager(newTestAssets(t), dev)

	obj, err := m.LoadObject("rat")
	if err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if obj.Name != "rat" || obj.Source != "rat" {
		t.Errorf("unexpected names %q/%q", obj.Name, obj.Source)
	}
	if obj.Weight != 12.5 {
		t.Errorf("expected weight 12.5, got %v", obj.Weight)
	}
	if obj.Color != (mgl32.Vec3{1, 0.5, 0}) {
		t.Errorf("unexpected color %v", obj.Color)
	}
	if len(obj.Mesh.SubMeshes()) != 1 {
		t.Errorf("expected the broken sub-mesh skipped, got %d", len(obj.Mesh.SubMeshes()))
	}
	if !obj.Material.Textured() {
		t.Error("expected textured material")
	}

	crate, err := m.LoadObject("crate")
	if err != nil {
		t.Fatalf("LoadObject crate: %v", err)
	}
	if crate.Material.Textured() {
		t.Error("texture = none must be untextured")
	}
	if crate.Mesh != obj.Mesh {
		t.Error("expected mesh shared between objects")
	}

	want := Stats{Programs: 1, Textures: 1, Materials: 2, Meshes: 1}
	if s := m.Stats(); s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}

	m.Release(obj)
	if s := m.Stats(); s.Textures != 0 || s.Meshes != 1 || s.Programs != 1 {
		t.Errorf("unexpected stats after releasing rat: %+v", s)
	}
	if dev.LiveTextures() != 0 {
		t.Error("texture should be deleted with its last material")
	}

	m.Release(crate)
	if s := m.Stats(); s != (Stats{}) {
		t.Errorf("expected everything released, got %+v", s)
	}
	if dev.LivePrograms() != 0 || dev.LiveBuffers() != 0 {
		t.Errorf("leaked programs=%d buffers=%d", dev.LivePrograms(), dev.LiveBuffers())
	}
}

func TestLoadObjectErrors(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = "syntax error"
	m := NewManager(newTestAssets(t), dev)

	if _, err := m.LoadObject("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := m.LoadObject("nomaterial"); !errors.Is(err, formats.ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}

	_, err := m.LoadObject("badshader")
	var ce *shader.CompileError
	if !errors.As(err, &ce) {
		t.Errorf("expected CompileError, got %v", err)
	}
	if s := m.Stats(); s != (Stats{}) {
		t.Errorf("failed load leaked resources: %+v", s)
	}
}

func TestLoadMaterialTextureFailureReleasesShader(t *testing.T) {
	dev := gputest.New()
	m := NewManager(newTestAssets(t), dev)

	if _, err := m.LoadMaterial("badtex"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing texture error, got %v", err)
	}
	if dev.LivePrograms() != 0 {
		t.Error("shader left alive after material failure")
	}
}

func TestModelPath(t *testing.T) {
	m := NewManager("assets", gputest.New())

	tests := map[string]string{
		"rat":       filepath.Join("assets", "models", "rat.obj"),
		"rat.obj":   filepath.Join("assets", "models", "rat.obj"),
		"ship.glb":  filepath.Join("assets", "models", "ship.glb"),
		"ship.GLTF": filepath.Join("assets", "models", "ship.GLTF"),
	}
	for in, want := range tests {
		if got := m.ModelPath(in); got != want {
			t.Errorf("ModelPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClose(t *testing.T) {
	dev := gputest.New()
	m := NewManager(newTestAssets(t), dev)
	if _, err := m.LoadObject("rat"); err != nil {
		t.Fatal(err)
	}

	m.Close()
	if dev.LivePrograms() != 0 || dev.LiveTextures() != 0 || dev.LiveBuffers() != 0 {
		t.Errorf("Close leaked programs=%d textures=%d buffers=%d",
			dev.LivePrograms(), dev.LiveTextures(), dev.LiveBuffers())
	}
}
