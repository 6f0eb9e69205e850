// Package game implements the engine context and the main frame loop.
package game

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/config"
	"github.com/Faultbox/rat-engine/internal/console"
	"github.com/Faultbox/rat-engine/internal/engine/camera"
	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/engine/input"
	"github.com/Faultbox/rat-engine/internal/engine/window"
	"github.com/Faultbox/rat-engine/internal/logger"
)

// Game owns the window and drives the engine every frame.
type Game struct {
	config  *config.Config
	window  *window.Window
	input   *input.Input
	engine  *Engine
	history *logger.History
	lines   <-chan string

	overlay     bool
	commandLine string
	title       string
	fps         int
}

// New creates the window, GL device and engine, then loads the startup
// objects. history feeds the console overlay and may be nil.
func New(cfg *config.Config, history *logger.History) (*Game, error) {
	logger.Info("initializing engine",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("assets", cfg.Assets.Root),
	)

	g := &Game{
		config:  cfg,
		history: history,
	}

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device needs the context the window just created.
	dev, err := gpu.NewGL()
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create graphics device: %w", err)
	}

	g.engine = NewEngine(cfg, dev, g.window)
	g.engine.Resize(g.window.GetSize())
	g.input = input.New()
	g.lines = console.ReadLines(os.Stdin)

	g.engine.LoadStartup()

	logger.Info("engine initialized successfully")
	return g, nil
}

// Run starts the main loop and returns when the user quits.
func (g *Game) Run() error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for g.engine.Running() {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		frame := g.input.Update()
		if frame.Quit {
			break
		}
		syncViewport(g.engine, &frame, g.window)
		g.handleKeys(&frame)

		// 2. Console commands from the overlay and stdin
		g.handleOverlay(&frame)
		g.drainLines()

		// 3. Camera + render + present
		in := camera.Input{DeltaTime: dt, Movement: g.input.Movement()}
		if g.window.MouseCaptured() {
			in.MouseDX, in.MouseDY = frame.MouseDX, frame.MouseDY
		}
		if _, err := g.engine.Frame(in); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			g.fps = frameCount
			frameCount = 0
			fpsTimer = time.Now()
		}
		g.updateTitle()
	}

	return nil
}

// drawable reports the framebuffer size in pixels.
type drawable interface {
	GetSize() (int, int)
}

// syncViewport resizes the engine after a window resize. The event carries
// the logical window size, which is smaller than the framebuffer on HiDPI
// displays, so the size is re-queried from the drawable.
func syncViewport(e *Engine, frame *input.Frame, d drawable) {
	if !frame.Resized {
		return
	}
	e.Resize(d.GetSize())
}

func (g *Game) handleKeys(frame *input.Frame) {
	for _, key := range frame.Pressed {
		switch key {
		case sdl.SCANCODE_ESCAPE:
			if g.overlay {
				g.setOverlay(false)
			} else {
				g.engine.Quit()
			}
		case sdl.SCANCODE_F3:
			g.window.SetMouseCaptured(!g.window.MouseCaptured())
		case sdl.SCANCODE_F12:
			g.engine.Screenshot()
		case sdl.SCANCODE_GRAVE:
			g.setOverlay(!g.overlay)
		}
	}
}

func (g *Game) setOverlay(open bool) {
	g.overlay = open
	g.commandLine = ""
	g.input.SetTextInput(open)
}

func (g *Game) handleOverlay(frame *input.Frame) {
	if !g.overlay {
		return
	}
	g.commandLine += strings.ReplaceAll(frame.Text, "`", "")
	if frame.Backspace && len(g.commandLine) > 0 {
		r := []rune(g.commandLine)
		g.commandLine = string(r[:len(r)-1])
	}
	if frame.Enter {
		line := strings.TrimSpace(g.commandLine)
		g.commandLine = ""
		if line != "" {
			_ = g.engine.Execute(line)
		}
	}
}

// drainLines runs every command read from stdin without blocking.
func (g *Game) drainLines() {
	for {
		select {
		case line, ok := <-g.lines:
			if !ok {
				g.lines = nil
				return
			}
			_ = g.engine.Execute(line)
		default:
			return
		}
	}
}

// updateTitle shows the FPS and, while the overlay is open, the command
// being typed and the latest log line.
func (g *Game) updateTitle() {
	title := fmt.Sprintf("%s | %d fps", g.window.Title(), g.fps)
	if g.overlay {
		last := g.engine.Console().Last()
		if g.history != nil && g.history.Last() != "" {
			last = g.history.Last()
		}
		title = fmt.Sprintf("%s | > %s_ | %s", title, g.commandLine, last)
	}
	if title != g.title {
		g.title = title
		g.window.SetTitle(title)
	}
}

// Close cleans up engine resources.
func (g *Game) Close() {
	logger.Info("closing engine")

	if g.engine != nil {
		g.engine.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
