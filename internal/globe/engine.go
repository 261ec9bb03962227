// Package globe owns the interactive globe: its rotation state, the inputs
// that change it (pointer drag and the auto-rotation ticker), and the scene
// that is re-projected whenever it changes.
//
// STATE MACHINE:
//
//	idle ──PointerDown──▶ dragging ──PointerUp──▶ idle
//	  │                     │
//	  Tick: lon += step     PointerMove: lon += dx·f, lat -= dy·f (clamped)
//	  (only if autoRotate)  Tick: no-op
//
// Dragging and auto-rotation never both apply in the same instant: Tick
// checks the dragging flag under the same lock PointerMove uses.
package globe

import (
	"sync"

	"github.com/sakif/scholarship-globe/internal/geo"
)

// Toggle button labels.
const (
	LabelPause  = "Pause Rotation"
	LabelResume = "Resume Rotation"
)

// Rotation is the globe's orientation in degrees, as passed to the
// projection. Lat is kept within [-90, 90]; Lon grows without bound and only
// wraps visually.
type Rotation struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func clampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

// Redrawer receives every rotation change. The Scene is the production
// implementation.
type Redrawer interface {
	Redraw(r Rotation)
}

// Config holds the engine's tuning constants.
type Config struct {
	DragFactor float64 // degrees per pixel of pointer movement
	Step       float64 // degrees of longitude per auto-rotation tick
	AutoRotate bool    // initial auto-rotation state
}

// DefaultConfig is half a degree per pixel of drag, 0.2°
// per tick, auto-rotating on load.
func DefaultConfig() Config {
	return Config{
		DragFactor: 0.5,
		Step:       0.2,
		AutoRotate: true,
	}
}

// Status is a snapshot of the engine, for the UI and for tests.
type Status struct {
	Rotation   Rotation `json:"rotation"`
	Dragging   bool     `json:"dragging"`
	AutoRotate bool     `json:"autoRotate"`
	Label      string   `json:"label"`
}

// Engine is the rotation state machine. It is safe for concurrent use: the
// pointer handlers and the scheduler goroutine serialize on one mutex, which
// gives the same one-event-at-a-time behaviour as a browser event loop.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	rotation   Rotation
	last       geo.Point
	dragging   bool
	autoRotate bool
	target     Redrawer
}

// NewEngine creates an engine at rotation [0, 0] that redraws target. The
// target is drawn once immediately so the first frame exists before any input.
func NewEngine(cfg Config, target Redrawer) *Engine {
	e := &Engine{
		cfg:        cfg,
		autoRotate: cfg.AutoRotate,
		target:     target,
	}
	e.target.Redraw(e.rotation)
	return e
}

// PointerDown starts a drag at p.
func (e *Engine) PointerDown(p geo.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dragging = true
	e.last = p
}

// PointerMove applies the movement since the last pointer position. Screen
// x maps to longitude; screen y maps to latitude with the sign inverted so
// that dragging down tilts the globe's top toward the viewer.
// It reports false (and changes nothing) when no drag is in progress.
func (e *Engine) PointerMove(p geo.Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dragging {
		return false
	}

	e.rotation.Lon += (p.X - e.last.X) * e.cfg.DragFactor
	e.rotation.Lat = clampLat(e.rotation.Lat - (p.Y-e.last.Y)*e.cfg.DragFactor)
	e.last = p

	e.target.Redraw(e.rotation)
	return true
}

// PointerUp ends the drag. Auto-rotation, if enabled, resumes on the next tick.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dragging = false
}

// Tick advances auto-rotation by one step. It reports whether it rotated:
// nothing happens while auto-rotation is off or a drag is in progress.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.autoRotate || e.dragging {
		return false
	}

	e.rotation.Lon += e.cfg.Step
	e.target.Redraw(e.rotation)
	return true
}

// ToggleAutoRotate flips auto-rotation and returns the new button label.
func (e *Engine) ToggleAutoRotate() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.autoRotate = !e.autoRotate
	return label(e.autoRotate)
}

// Status returns a consistent snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		Rotation:   e.rotation,
		Dragging:   e.dragging,
		AutoRotate: e.autoRotate,
		Label:      label(e.autoRotate),
	}
}

func label(autoRotate bool) string {
	if autoRotate {
		return LabelPause
	}
	return LabelResume
}
