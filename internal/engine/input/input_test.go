package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func key(t uint32, code sdl.Scancode, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: t, Repeat: repeat, Keysym: sdl.Keysym{Scancode: code}}
}

func TestHandleFrame(t *testing.T) {
	in := New()
	in.begin()

	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_W, 0))
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_W, 1))
	in.handle(&sdl.MouseMotionEvent{XRel: 3, YRel: -2})
	in.handle(&sdl.MouseMotionEvent{XRel: 1, YRel: -1})
	in.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 1024, Data2: 768})

	f := in.frame
	if len(f.Pressed) != 1 || !f.WasPressed(sdl.SCANCODE_W) {
		t.Errorf("expected a single W press, got %v", f.Pressed)
	}
	if f.MouseDX != 4 || f.MouseDY != -3 {
		t.Errorf("expected accumulated motion (4,-3), got (%v,%v)", f.MouseDX, f.MouseDY)
	}
	if !f.Resized || f.Width != 1024 || f.Height != 768 {
		t.Errorf("unexpected resize %+v", f)
	}
	if m := in.Movement(); !m.Forward || m.Back {
		t.Errorf("unexpected movement %+v", m)
	}

	in.begin()
	in.handle(key(sdl.KEYUP, sdl.SCANCODE_W, 0))
	in.handle(&sdl.QuitEvent{})
	if in.Movement().Forward {
		t.Error("W should be released")
	}
	if !in.frame.Quit || len(in.frame.Pressed) != 0 {
		t.Errorf("unexpected second frame %+v", in.frame)
	}
}

func TestTextInput(t *testing.T) {
	in := New()
	in.text = true
	in.begin()

	text := &sdl.TextInputEvent{}
	copy(text.Text[:], "obj list")
	in.handle(text)
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_D, 0))
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_RETURN, 0))

	if in.frame.Text != "obj list" || !in.frame.Enter {
		t.Errorf("unexpected text frame %+v", in.frame)
	}
	if in.Movement().Right {
		t.Error("movement must be suppressed while typing")
	}
}
