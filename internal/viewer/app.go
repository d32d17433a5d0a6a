package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/meshkit/subdiv/internal/logger"
	"github.com/meshkit/subdiv/pkg/subd"
)

// App drives the interactive viewer: one refined level as a wireframe,
// an optional cage overlay, and an orbit camera on the mouse.
type App struct {
	running bool
	window  *Window
	level   *WireframeRenderer
	overlay *WireframeRenderer
	camera  *OrbitCamera

	subd     *subd.Subd
	depth    int32
	showCage bool
	lines    [][]float32 // per-depth segment cache

	baseTitle string
	dragging  bool
}

// NewApp creates the viewer over an already refined hierarchy. The
// deepest level is shown first.
func NewApp(cfg Config, s *subd.Subd, showCage bool) (*App, error) {
	a := &App{
		subd:      s,
		showCage:  showCage,
		baseTitle: cfg.Title,
		lines:     make([][]float32, s.MaxDepth()+1),
	}

	// Create window (this also creates the OpenGL context)
	var err error
	a.window, err = NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderers come after the window, their GL context must exist
	a.level, err = NewWireframeRenderer()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.overlay, err = NewWireframeRenderer()
	if err != nil {
		a.level.Destroy()
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.overlay.SetLines(CageLines(s.Cage()))

	a.camera = NewOrbitCamera()
	a.camera.FitToBounds(MeshBounds(s.Cage()))

	a.setDepth(s.MaxDepth())

	w, h := a.window.Size()
	gl.Viewport(0, 0, int32(w), int32(h))
	return a, nil
}

// Run starts the viewer loop and returns when the window closes.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("viewer running",
		zap.Int32("depth", a.depth),
		zap.Int32("maxDepth", a.subd.MaxDepth()))
	logger.Info("keys: 0-9 depth, C cage, F frame view, Esc quit")

	for a.running {
		a.handleEvents()
		a.render()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("frames", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases the renderers and the window.
func (a *App) Close() {
	if a.overlay != nil {
		a.overlay.Destroy()
	}
	if a.level != nil {
		a.level.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			a.running = false

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				w, h := a.window.Size()
				gl.Viewport(0, 0, int32(w), int32(h))
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				a.handleKey(e.Keysym.Sym)
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				a.dragging = e.State == sdl.PRESSED
			}

		case *sdl.MouseMotionEvent:
			if a.dragging {
				a.camera.HandleDrag(float32(e.XRel), float32(e.YRel))
			}

		case *sdl.MouseWheelEvent:
			a.camera.HandleZoom(float32(e.Y))
		}
	}
}

func (a *App) handleKey(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE:
		a.running = false
	case sdl.K_c:
		a.showCage = !a.showCage
	case sdl.K_f:
		a.camera.FitToBounds(MeshBounds(a.subd.Cage()))
	default:
		if key >= sdl.K_0 && key <= sdl.K_9 {
			a.setDepth(int32(key - sdl.K_0))
		}
	}
}

// setDepth switches the displayed level, building its line set on first
// use.
func (a *App) setDepth(d int32) {
	if d < 0 || d > a.subd.MaxDepth() || d == a.depth {
		return
	}
	if a.lines[d] == nil {
		a.lines[d] = LevelLines(a.subd, d)
	}
	a.depth = d
	a.level.SetLines(a.lines[d])
	a.window.SetTitle(fmt.Sprintf("%s [depth %d/%d]", a.baseTitle, d, a.subd.MaxDepth()))
	logger.Debug("depth selected", zap.Int32("depth", d))
}

func (a *App) render() {
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	w, h := a.window.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.01, 1000)
	mvp := proj.Mul4(a.camera.ViewMatrix())

	a.level.Render(mvp, mgl32.Vec3{0.85, 0.87, 0.92})
	// The cage is its own wire set at depth 0
	if a.showCage && a.depth > 0 {
		a.overlay.Render(mvp, mgl32.Vec3{0.95, 0.55, 0.15})
	}
}
