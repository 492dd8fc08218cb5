package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pwng/camera"
	"github.com/pthm-cable/pwng/components"
	"github.com/pthm-cable/pwng/store"
)

// Visible is an entity inside the window this frame, with its window
// position in pixels.
type Visible struct {
	Entity ecs.Entity
	X, Y   float64
}

// VisibleSet is the per-frame result of culling. It is rebuilt from
// scratch every frame, so entities never carry stale visibility.
type VisibleSet struct {
	items []Visible
}

// Reset empties the set, keeping its storage.
func (v *VisibleSet) Reset() {
	v.items = v.items[:0]
}

// Len returns the number of visible entities.
func (v *VisibleSet) Len() int { return len(v.items) }

// Items returns the visible entities. The slice is reused next frame.
func (v *VisibleSet) Items() []Visible { return v.items }

// Cull fills set with every positioned entity whose window position lies
// in [0, w) × [0, h).
func Cull(set *VisibleSet, s *store.Store, off camera.Offset, zoom float64, w, h int) {
	set.Reset()
	fw, fh := float64(w), float64(h)
	s.EachPositioned(func(e ecs.Entity, sys components.SystemPosition, local *components.LocalPosition) {
		var lx, ly float64
		if local != nil {
			lx, ly = local.X, local.Y
		}
		x, y := off.Apply(sys.X, sys.Y, lx, ly)
		sx, sy := camera.ToScreen(x, y, zoom, w, h)
		if sx >= 0 && sx < fw && sy >= 0 && sy < fh {
			set.items = append(set.items, Visible{Entity: e, X: sx, Y: sy})
		}
	})
}
