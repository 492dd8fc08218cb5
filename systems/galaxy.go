package systems

import (
	"math"

	"github.com/pthm-cable/pwng/camera"
	"github.com/pthm-cable/pwng/components"
	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
	"github.com/pthm-cable/pwng/palette"
	"github.com/pthm-cable/pwng/store"
)

// GalaxyRenderer draws the star field into whatever target is bound,
// either as the pre-baked point cloud or as per-entity circles.
type GalaxyRenderer struct {
	stars     config.StarsConfig
	pointSize float64
	palette   *palette.Palette
	fallback  gfx.Color

	mesh  []gfx.PointVertex
	built bool
}

// NewGalaxyRenderer creates a renderer with an empty mesh.
func NewGalaxyRenderer(cfg *config.Config, pal *palette.Palette) *GalaxyRenderer {
	return &GalaxyRenderer{
		stars:     cfg.Stars,
		pointSize: cfg.Render.PointSize,
		palette:   pal,
		fallback:  gfx.RGB3(cfg.Stars.FallbackColor),
	}
}

// Build bakes the point cloud from every star in s. It returns
// store.ErrEmptyDataSet when there are none; the mesh is then empty and
// drawing it is a no-op.
func (g *GalaxyRenderer) Build(s *store.Store) error {
	g.mesh = g.mesh[:0]
	s.EachStar(func(sys components.SystemPosition, star components.StarData) {
		g.mesh = append(g.mesh, gfx.PointVertex{
			X:     float32(sys.X),
			Y:     float32(sys.Y),
			Color: g.starColor(star.Temperature),
		})
	})
	g.built = true
	if len(g.mesh) == 0 {
		return store.ErrEmptyDataSet
	}
	return nil
}

// Built reports whether a mesh has been baked.
func (g *GalaxyRenderer) Built() bool { return g.built }

// MeshLen returns the number of baked points.
func (g *GalaxyRenderer) MeshLen() int { return len(g.mesh) }

func (g *GalaxyRenderer) starColor(temperature float64) gfx.Color {
	return g.palette.Temperature(temperature, g.stars.TemperatureMin, g.stars.TemperatureRange)
}

// pass describes the target a draw call renders into.
type pass struct {
	factor     float64 // target pixels per window pixel
	winW, winH int
	tw, th     int
}

// DrawPoints draws the point cloud. Point size follows the pass factor so
// a point covers the same window area at every level.
func (g *GalaxyRenderer) DrawPoints(dev gfx.Device, off camera.Offset, zoom float64, p pass) {
	if len(g.mesh) == 0 {
		return
	}
	ox, oy := off.Total()
	xf := gfx.Transform{
		OffsetX: ox,
		OffsetY: oy,
		Scale:   zoom * p.factor,
		CenterX: float64(p.tw) / 2,
		CenterY: float64(p.th) / 2,
	}
	size := math.Max(1, g.pointSize*p.factor)
	dev.DrawPoints(g.mesh, xf, float32(size))
}

// DrawCircles draws every visible entity as a circle.
func (g *GalaxyRenderer) DrawCircles(dev gfx.Device, s *store.Store, vis *VisibleSet, zoom float64, p pass) {
	minWin := g.stars.DisplaySizeMin
	if p.factor < 1 {
		minWin /= p.factor
	}
	for _, v := range vis.Items() {
		radius, _ := s.Radius(v.Entity)
		r := math.Max(radius*zoom*g.stars.DisplayScaleFactor, minWin) * p.factor

		c := g.fallback
		if star, ok := s.Star(v.Entity); ok {
			c = g.starColor(star.Temperature)
		}

		x := (v.X-float64(p.winW)/2)*p.factor + float64(p.tw)/2
		y := (v.Y-float64(p.winH)/2)*p.factor + float64(p.th)/2
		dev.DrawCircle(float32(x), float32(y), float32(r), g.Segments(r), c)
	}
}

// Segments picks the tessellation for a circle of r target pixels.
func (g *GalaxyRenderer) Segments(r float64) int {
	tiers := g.stars.CircleTiers
	for _, t := range tiers {
		if t.MaxRadius <= 0 || r < t.MaxRadius {
			return t.Segments
		}
	}
	return tiers[len(tiers)-1].Segments
}
