package device

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"solo-engine/core"
)

func init() {
	// glfw and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// Window is a glfw window owning an OpenGL 4.1 core context.
type Window struct {
	handle *glfw.Window
	width  int
	height int
	title  string
}

func newWindow(cfg core.WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(cfg.Resizable))

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	handle.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{handle: handle, title: cfg.Title}
	w.width, w.height = handle.GetFramebufferSize()
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
	})
	return w, nil
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) { return w.width, w.height }

// Size is the window size in screen coordinates, the space CursorPos
// reports in.
func (w *Window) Size() (int, int) { return w.handle.GetSize() }

func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }
func (w *Window) SetShouldClose()   { w.handle.SetShouldClose(true) }
func (w *Window) PollEvents()       { glfw.PollEvents() }
func (w *Window) SwapBuffers()      { w.handle.SwapBuffers() }

func (w *Window) Title() string { return w.title }

func (w *Window) SetTitle(title string) {
	w.handle.SetTitle(title)
	w.title = title
}

func (w *Window) IsKeyPressed(key Key) bool {
	return w.handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) CursorPos() (float64, float64) { return w.handle.GetCursorPos() }

// SetScrollCallback replaces the scroll wheel handler.
func (w *Window) SetScrollCallback(cb func(xoff, yoff float64)) {
	w.handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func (w *Window) destroy() {
	w.handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// Key is a keyboard key.
type Key int

const (
	KeySpace  = Key(glfw.KeySpace)
	KeyEscape = Key(glfw.KeyEscape)
	KeyEnter  = Key(glfw.KeyEnter)
	KeyTab    = Key(glfw.KeyTab)
	KeyLeft   = Key(glfw.KeyLeft)
	KeyRight  = Key(glfw.KeyRight)
	KeyUp     = Key(glfw.KeyUp)
	KeyDown   = Key(glfw.KeyDown)
	KeyA      = Key(glfw.KeyA)
	KeyD      = Key(glfw.KeyD)
	KeyE      = Key(glfw.KeyE)
	KeyF      = Key(glfw.KeyF)
	KeyG      = Key(glfw.KeyG)
	KeyP      = Key(glfw.KeyP)
	KeyQ      = Key(glfw.KeyQ)
	KeyS      = Key(glfw.KeyS)
	KeyW      = Key(glfw.KeyW)
	KeyF1     = Key(glfw.KeyF1)
)

// Mouse buttons.
const (
	MouseLeft   = int(glfw.MouseButtonLeft)
	MouseRight  = int(glfw.MouseButtonRight)
	MouseMiddle = int(glfw.MouseButtonMiddle)
)
