package systems

import "github.com/pthm-cable/pwng/gfx"

const insetMargin = 4

// Compositor draws the frame's final image onto the display, optionally
// with small insets of each raw pyramid level along the bottom edge.
type Compositor struct {
	DebugInsets   bool
	InsetFraction float64
}

// Compose clears the display and stretches final over a w×h window.
func (c *Compositor) Compose(dev gfx.Device, final gfx.Target, w, h int, levels []Level) {
	gfx.WithTarget(dev, nil, func() {
		dev.Clear(gfx.Color{A: 1})
		if final != nil {
			dev.Draw(final, gfx.Rect{W: float32(w), H: float32(h)})
		}
		if !c.DebugInsets {
			return
		}
		iw := float32(float64(w) * c.InsetFraction)
		x := float32(insetMargin)
		for i := range levels {
			l := &levels[i]
			ih := iw * float32(l.Height()) / float32(l.Width())
			dev.Draw(l.Raw(), gfx.Rect{X: x, Y: float32(h) - ih - insetMargin, W: iw, H: ih})
			x += iw + insetMargin
		}
	})
}
