// Package input turns SDL2 events into a per-frame input snapshot.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/rat-engine/internal/engine/camera"
)

// Frame is everything that happened since the previous Update.
type Frame struct {
	Quit bool

	// Logical window size from the resize event; the drawable may be
	// larger on HiDPI displays.
	Resized bool
	Width   int
	Height  int

	// Relative mouse motion in pixels.
	MouseDX float32
	MouseDY float32

	// Keys pressed this frame, key repeat excluded.
	Pressed []sdl.Scancode

	// Text typed while text input is active.
	Text      string
	Backspace bool
	Enter     bool
}

// WasPressed reports whether scancode went down this frame.
func (f *Frame) WasPressed(scancode sdl.Scancode) bool {
	for _, k := range f.Pressed {
		if k == scancode {
			return true
		}
	}
	return false
}

// Input handles all input processing.
type Input struct {
	frame Frame
	held  map[sdl.Scancode]bool
	text  bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		held: make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and returns the frame snapshot.
func (i *Input) Update() Frame {
	i.begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.frame
}

func (i *Input) begin() {
	i.frame = Frame{Pressed: i.frame.Pressed[:0]}
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.frame.Quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.frame.Resized = true
			i.frame.Width = int(e.Data1)
			i.frame.Height = int(e.Data2)
		}
		if e.Event == sdl.WINDOWEVENT_FOCUS_LOST {
			clear(i.held)
		}

	case *sdl.KeyboardEvent:
		code := e.Keysym.Scancode
		switch e.Type {
		case sdl.KEYDOWN:
			i.held[code] = true
			if e.Repeat == 0 {
				i.frame.Pressed = append(i.frame.Pressed, code)
			}
			if i.text {
				switch code {
				case sdl.SCANCODE_BACKSPACE:
					i.frame.Backspace = true
				case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
					i.frame.Enter = true
				}
			}
		case sdl.KEYUP:
			delete(i.held, code)
		}

	case *sdl.TextInputEvent:
		if i.text {
			i.frame.Text += e.GetText()
		}

	case *sdl.MouseMotionEvent:
		i.frame.MouseDX += float32(e.XRel)
		i.frame.MouseDY += float32(e.YRel)
	}
}

// Movement returns the WASD movement keys. Nothing moves while text
// input is active.
func (i *Input) Movement() camera.Movement {
	if i.text {
		return camera.Movement{}
	}
	return camera.Movement{
		Forward: i.held[sdl.SCANCODE_W],
		Back:    i.held[sdl.SCANCODE_S],
		Left:    i.held[sdl.SCANCODE_A],
		Right:   i.held[sdl.SCANCODE_D],
	}
}

// SetTextInput switches between game keys and text entry.
func (i *Input) SetTextInput(enabled bool) {
	if enabled == i.text {
		return
	}
	i.text = enabled
	if enabled {
		sdl.StartTextInput()
	} else {
		sdl.StopTextInput()
	}
}

// TextInput reports whether text entry is active.
func (i *Input) TextInput() bool {
	return i.text
}
