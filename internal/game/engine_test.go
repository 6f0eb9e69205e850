package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rat-engine/internal/config"
	"github.com/Faultbox/rat-engine/internal/console"
	"github.com/Faultbox/rat-engine/internal/engine/camera"
	"github.com/Faultbox/rat-engine/internal/engine/gpu/gputest"
	"github.com/Faultbox/rat-engine/internal/engine/input"
)

func writeAsset(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestEngine(t *testing.T, mutate func(*config.Config)) (*Engine, *gputest.Device) {
	t.Helper()
	root := t.TempDir()
	writeAsset(t, root, "shaders/default.vert", "void main() {}")
	writeAsset(t, root, "shaders/default.frag", "void main() {}")
	writeAsset(t, root, "models/tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	writeAsset(t, root, "materials/default.mat", "name = default\nshader = default\ntexture = none\n")
	writeAsset(t, root, "objects/rat.robj", "name = rat\nmodel = tri\nmaterial = default\nweight = 1\nposition = 0, 0, -5\n")

	cfg := config.Default()
	cfg.Assets.Root = root
	if mutate != nil {
		mutate(cfg)
	}

	dev := gputest.New()
	e := NewEngine(cfg, dev, nil)
	t.Cleanup(e.Close)
	return e, dev
}

func TestEngineStartup(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Config) {
		c.Scene.Startup = []string{"missing", "rat"}
	})

	e.LoadStartup()
	if len(e.Objects()) != 1 || e.Object("rat") == nil {
		t.Fatalf("expected rat spawned, got %d objects", len(e.Objects()))
	}

	want := mgl32.Vec3{0, 0, -1}
	if e.Camera().Forward().Sub(want).Len() > 1e-4 {
		t.Errorf("expected camera to face the rat, forward=%v", e.Camera().Forward())
	}
}

func TestEngineConsoleCommands(t *testing.T) {
	e, dev := newTestEngine(t, nil)

	for _, line := range []string{"obj load rat", "obj load rat", "obj moveto rat_1 3 0 0"} {
		if err := e.Execute(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	if len(e.Objects()) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(e.Objects()))
	}

	stats, err := e.Frame(camera.Input{DeltaTime: 0.016})
	if err != nil {
		t.Fatal(err)
	}
	if stats.DrawCalls != 2 {
		t.Errorf("expected 2 draw calls, got %+v", stats)
	}
	// Both objects share one mesh.
	if dev.LiveBuffers() != 1 {
		t.Errorf("expected one shared buffer set, got %d", dev.LiveBuffers())
	}

	if err := e.Execute("obj remove rat"); err != nil {
		t.Fatal(err)
	}
	if dev.LiveBuffers() != 1 {
		t.Error("mesh released while still in use")
	}
	if err := e.Execute("obj remove rat_1"); err != nil {
		t.Fatal(err)
	}
	if dev.LiveBuffers() != 0 || dev.LivePrograms() != 0 {
		t.Errorf("resources leaked: buffers=%d programs=%d", dev.LiveBuffers(), dev.LivePrograms())
	}

	if err := e.Execute("obj remove rat"); !errors.Is(err, console.ErrNoObject) {
		t.Errorf("expected ErrNoObject, got %v", err)
	}

	if err := e.Execute("quit"); err != nil || e.Running() {
		t.Errorf("expected engine stopped, err=%v", err)
	}
}

func TestEngineStreamingFrames(t *testing.T) {
	e, dev := newTestEngine(t, func(c *config.Config) {
		c.Graphics.StreamBuffers = true
	})
	if !e.renderer.Streaming() {
		t.Fatal("renderer not in streaming mode")
	}
	if _, err := e.LoadObject("rat"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.Frame(camera.Input{DeltaTime: 0.016}); err != nil {
			t.Fatal(err)
		}
		if dev.LiveBuffers() != 0 {
			t.Fatalf("frame %d: buffers kept in streaming mode", i)
		}
	}
	if dev.Count("CreateMeshBuffers") != 3 {
		t.Errorf("expected an upload per frame, got %d", dev.Count("CreateMeshBuffers"))
	}
}

func TestEngineResize(t *testing.T) {
	e, dev := newTestEngine(t, nil)
	e.Resize(1600, 800)
	e.Resize(0, 0)

	if e.Camera().Aspect() != 2 {
		t.Errorf("expected aspect 2, got %v", e.Camera().Aspect())
	}
	if dev.Count("Viewport 1600x800") != 1 {
		t.Errorf("expected viewport update, calls %v", dev.Calls)
	}
}

func TestEngineScreenshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	e, dev := newTestEngine(t, func(c *config.Config) {
		c.Screenshots.Dir = dir
		c.Window.Width, c.Window.Height = 4, 2
	})

	if err := e.Execute("screenshot"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Frame(camera.Input{DeltaTime: 0.016}); err != nil {
		t.Fatal(err)
	}
	if dev.Count("ReadPixels 4x2") != 1 {
		t.Errorf("expected one framebuffer read, calls %v", dev.Calls)
	}

	files, err := filepath.Glob(filepath.Join(dir, "rat_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected one screenshot file, got %v", files)
	}
}

type fixedDrawable struct{ w, h int }

func (d fixedDrawable) GetSize() (int, int) { return d.w, d.h }

func TestSyncViewportUsesDrawableSize(t *testing.T) {
	e, dev := newTestEngine(t, nil)
	dev.Reset()

	// HiDPI: the event reports points, the drawable is twice as large.
	frame := input.Frame{Resized: true, Width: 800, Height: 500}
	syncViewport(e, &frame, fixedDrawable{1600, 1000})

	if dev.Count("Viewport 1600x1000") != 1 || dev.Count("Viewport 800x500") != 0 {
		t.Errorf("viewport not sized from the drawable, calls %v", dev.Calls)
	}
	if e.Camera().Aspect() != 1.6 {
		t.Errorf("expected aspect 1.6, got %v", e.Camera().Aspect())
	}

	dev.Reset()
	syncViewport(e, &input.Frame{}, fixedDrawable{10, 10})
	if dev.Count("Viewport") != 0 {
		t.Error("viewport changed without a resize event")
	}
}
