// Package camera holds the view state shared by the render passes:
// a translation in the galaxy frame, an optional hook entity the view
// follows, and the eased zoom factor.
package camera

import (
	"errors"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pwng/components"
)

// ErrInvalidCameraReference is returned by Resolve when the hook entity
// is dead or has no position.
var ErrInvalidCameraReference = errors.New("invalid camera reference")

// PositionSource looks up entity positions. store.Store satisfies it.
type PositionSource interface {
	Position(e ecs.Entity) (components.SystemPosition, components.LocalPosition, bool)
}

// Offset is the translation applied to every entity before zooming, in
// meters, kept as a system part and a local part. Adding the parts
// separately preserves small local offsets next to galaxy-scale positions.
type Offset struct {
	SysX, SysY     float64
	LocalX, LocalY float64
}

// Apply translates an entity position: ((sys + sysOff) + localOff) + local.
func (o Offset) Apply(sysX, sysY, localX, localY float64) (float64, float64) {
	x := sysX + o.SysX
	y := sysY + o.SysY
	x += o.LocalX
	y += o.LocalY
	return x + localX, y + localY
}

// Total returns the combined translation.
func (o Offset) Total() (float64, float64) {
	return o.SysX + o.LocalX, o.SysY + o.LocalY
}

// State is the camera. Positions are translations added to entity
// positions, so panning the view right increases LocalX.
type State struct {
	SystemX, SystemY float64
	LocalX, LocalY   float64

	Hook   ecs.Entity
	Hooked bool

	Zoom Zoom
}

// New creates a camera at the origin with the given zoom limits.
func New(zoom, minZoom, maxZoom float64, steps int) *State {
	return &State{Zoom: NewZoom(zoom, minZoom, maxZoom, steps)}
}

// SetHook makes the view follow e and resets the pan, so the hooked
// entity lands at the window center.
func (s *State) SetHook(e ecs.Entity) {
	s.Hook = e
	s.Hooked = true
	s.Reset()
}

// ClearHook detaches the camera from its hook.
func (s *State) ClearHook() {
	s.Hook = ecs.Entity{}
	s.Hooked = false
}

// Reset moves the camera back to the hook (or origin).
func (s *State) Reset() {
	s.SystemX, s.SystemY = 0, 0
	s.LocalX, s.LocalY = 0, 0
}

// Pan shifts the view by a screen-space delta in pixels.
func (s *State) Pan(dx, dy float64) {
	z := s.Zoom.Current
	if z <= 0 {
		return
	}
	s.LocalX += dx / z
	s.LocalY += dy / z
}

// Resolve returns the translation (camSys − hookSys) + (camLocal − hookLocal).
// If the hook cannot be resolved, the hook contributes zero and the error
// is ErrInvalidCameraReference; the returned offset is still usable.
func (s *State) Resolve(src PositionSource) (Offset, error) {
	off := Offset{
		SysX: s.SystemX, SysY: s.SystemY,
		LocalX: s.LocalX, LocalY: s.LocalY,
	}
	if !s.Hooked {
		return off, nil
	}
	sys, local, ok := src.Position(s.Hook)
	if !ok {
		return off, ErrInvalidCameraReference
	}
	off.SysX -= sys.X
	off.SysY -= sys.Y
	off.LocalX -= local.X
	off.LocalY -= local.Y
	return off, nil
}

// ToScreen maps a translated position (see Offset.Apply) to window pixels
// for a window of size w×h. The origin lands at the window center.
func ToScreen(x, y, zoom float64, w, h int) (float64, float64) {
	return float64(w)/2 + x*zoom, float64(h)/2 + y*zoom
}

// ToWorld is the inverse of ToScreen.
func ToWorld(sx, sy, zoom float64, w, h int) (float64, float64) {
	return (sx - float64(w)/2) / zoom, (sy - float64(h)/2) / zoom
}
