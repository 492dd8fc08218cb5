// Package soft is a CPU implementation of gfx.Device.
//
// It rasterizes into float32 RGBA targets and follows GPU conventions
// closely enough for the render passes to be tested without a window:
// clamp-to-edge bilinear sampling, overwrite blending for opaque
// primitives, and a display target that Bind(nil) selects.
package soft

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/pthm-cable/pwng/gfx"
)

// binomial 5-tap kernel, center first.
var kernel5 = [3]float32{6.0 / 16, 4.0 / 16, 1.0 / 16}

// Stats counts device work since creation.
type Stats struct {
	TargetsLive      int
	TargetsAllocated int
	MaxTargetSide    int
	Points           int
	Circles          int
	Segments         map[int]int // circles drawn per tessellation segment count
	Blurs            int
	Blends           int
	Draws            int
}

// Device draws on the CPU.
type Device struct {
	maxTex  int
	display *Target
	bound   *Target
	raster  *vector.Rasterizer

	Stats Stats
}

// NewDevice creates a device with a w×h display and the given texture ceiling.
func NewDevice(w, h, maxTex int) *Device {
	return &Device{
		maxTex:  maxTex,
		display: newTarget(w, h),
		raster:  vector.NewRasterizer(0, 0),
		Stats:   Stats{Segments: make(map[int]int)},
	}
}

// Display returns the window image.
func (d *Device) Display() *Target { return d.display }

// MaxTextureSize implements gfx.Device.
func (d *Device) MaxTextureSize() int { return d.maxTex }

// NewTarget implements gfx.Device.
func (d *Device) NewTarget(w, h int) (gfx.Target, error) {
	if err := gfx.CheckSize(w, h, d.maxTex); err != nil {
		return nil, err
	}
	d.Stats.TargetsLive++
	d.Stats.TargetsAllocated++
	if w > d.Stats.MaxTargetSide {
		d.Stats.MaxTargetSide = w
	}
	if h > d.Stats.MaxTargetSide {
		d.Stats.MaxTargetSide = h
	}
	return newTarget(w, h), nil
}

// ReleaseTarget implements gfx.Device.
func (d *Device) ReleaseTarget(t gfx.Target) {
	st, ok := t.(*Target)
	if !ok || st == nil {
		return
	}
	if d.bound == st {
		d.bound = nil
	}
	st.pix = nil
	d.Stats.TargetsLive--
}

// Bind implements gfx.Device.
func (d *Device) Bind(t gfx.Target) gfx.Target {
	var prev gfx.Target
	if d.bound != nil {
		prev = d.bound
	}
	if t == nil {
		d.bound = nil
	} else {
		d.bound = t.(*Target)
	}
	return prev
}

func (d *Device) dst() *Target {
	if d.bound != nil {
		return d.bound
	}
	return d.display
}

// Clear implements gfx.Device.
func (d *Device) Clear(c gfx.Color) {
	d.dst().fill(c)
}

// DrawPoints implements gfx.Device. Each point is a size×size square
// snapped to the pixel grid.
func (d *Device) DrawPoints(pts []gfx.PointVertex, xf gfx.Transform, size float32) {
	dst := d.dst()
	side := max(int(size+0.5), 1)
	half := float64(side) / 2
	bounds := dst.Bounds()
	for _, p := range pts {
		sx, sy := xf.Apply(float64(p.X), float64(p.Y))
		x0 := floor(sx - half + 0.5)
		y0 := floor(sy - half + 0.5)
		r := image.Rect(x0, y0, x0+side, y0+side)
		if !r.Overlaps(bounds) {
			continue
		}
		xdraw.Draw(dst, r, image.NewUniform(toRGBA64(p.Color)), image.Point{}, xdraw.Src)
	}
	d.Stats.Points += len(pts)
}

// DrawCircle implements gfx.Device. The disc is tessellated into the
// requested number of segments like the GPU path; circles below half a
// pixel still cover the pixel under their center.
func (d *Device) DrawCircle(cx, cy, r float32, segments int, c gfx.Color) {
	d.Stats.Circles++
	d.Stats.Segments[segments]++

	dst := d.dst()
	if r < 0.5 {
		x, y := floor(float64(cx)), floor(float64(cy))
		xdraw.Draw(dst, image.Rect(x, y, x+1, y+1), image.NewUniform(toRGBA64(c)), image.Point{}, xdraw.Src)
		return
	}
	n := max(segments, 3)
	if covers(cx, cy, r*float32(math.Cos(math.Pi/float64(n))), dst.Bounds()) {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(toRGBA64(c)), image.Point{}, xdraw.Src)
		return
	}
	poly := make([]vec2, n)
	for i := range poly {
		a := 2 * math.Pi * float64(i) / float64(n)
		poly[i] = vec2{float64(cx) + float64(r)*math.Cos(a), float64(cy) + float64(r)*math.Sin(a)}
	}
	d.fillPolygon(dst, poly, c)
}

// DrawLine implements gfx.Device as a quad of the given thickness.
func (d *Device) DrawLine(x0, y0, x1, y1, thick float32, c gfx.Color) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	length := math.Hypot(dx, dy)
	half := math.Max(float64(thick), 1) / 2
	// unit normal and tangent; a zero-length line becomes a square dot
	nx, ny, tx, ty := 0.0, half, half, 0.0
	if length > 0 {
		nx, ny = -dy/length*half, dx/length*half
		tx, ty = dx/length*half, dy/length*half
	}
	ax, ay := float64(x0)-tx, float64(y0)-ty
	bx, by := float64(x1)+tx, float64(y1)+ty
	d.fillPolygon(d.dst(), []vec2{
		{ax + nx, ay + ny},
		{bx + nx, by + ny},
		{bx - nx, by - ny},
		{ax - nx, ay - ny},
	}, c)
}

// covers reports whether a disc of radius inner contains all of b.
func covers(cx, cy, inner float32, b image.Rectangle) bool {
	for _, p := range [...]image.Point{b.Min, {b.Max.X, b.Min.Y}, {b.Min.X, b.Max.Y}, b.Max} {
		dx, dy := float64(float32(p.X)-cx), float64(float32(p.Y)-cy)
		if math.Hypot(dx, dy) > float64(inner) {
			return false
		}
	}
	return true
}

type vec2 struct{ x, y float64 }

// fillPolygon rasterizes a convex polygon over dst. The rasterizer only
// covers the part of the polygon's bounds inside dst, so the polygon is
// clipped to that box first.
func (d *Device) fillPolygon(dst *Target, poly []vec2, c gfx.Color) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	box := image.Rect(floor(minX), floor(minY), floor(maxX)+1, floor(maxY)+1).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	if minX < float64(box.Min.X) || minY < float64(box.Min.Y) || maxX > float64(box.Max.X) || maxY > float64(box.Max.Y) {
		poly = clipToBox(poly, box)
		if len(poly) < 3 {
			return
		}
	}

	z := d.raster
	z.Reset(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	z.MoveTo(float32(poly[0].x-ox), float32(poly[0].y-oy))
	for _, p := range poly[1:] {
		z.LineTo(float32(p.x-ox), float32(p.y-oy))
	}
	z.ClosePath()
	z.Draw(dst, box, image.NewUniform(toRGBA64(c)), image.Point{})
}

// clipToBox clips a convex polygon against each edge of box in turn.
func clipToBox(poly []vec2, box image.Rectangle) []vec2 {
	edges := []struct {
		inside func(p vec2) bool
		cross  func(a, b vec2) vec2
	}{
		{func(p vec2) bool { return p.x >= float64(box.Min.X) }, func(a, b vec2) vec2 { return atX(a, b, float64(box.Min.X)) }},
		{func(p vec2) bool { return p.x <= float64(box.Max.X) }, func(a, b vec2) vec2 { return atX(a, b, float64(box.Max.X)) }},
		{func(p vec2) bool { return p.y >= float64(box.Min.Y) }, func(a, b vec2) vec2 { return atY(a, b, float64(box.Min.Y)) }},
		{func(p vec2) bool { return p.y <= float64(box.Max.Y) }, func(a, b vec2) vec2 { return atY(a, b, float64(box.Max.Y)) }},
	}
	for _, e := range edges {
		if len(poly) == 0 {
			return nil
		}
		out := make([]vec2, 0, len(poly)+1)
		prev := poly[len(poly)-1]
		for _, cur := range poly {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
		poly = out
	}
	return poly
}

func atX(a, b vec2, x float64) vec2 {
	t := (x - a.x) / (b.x - a.x)
	return vec2{x, a.y + (b.y-a.y)*t}
}

func atY(a, b vec2, y float64) vec2 {
	t := (y - a.y) / (b.y - a.y)
	return vec2{a.x + (b.x-a.x)*t, y}
}

func toRGBA64(c gfx.Color) color.RGBA64 {
	a := to16(c.A)
	return color.RGBA64{R: to16(c.R * c.A), G: to16(c.G * c.A), B: to16(c.B * c.A), A: a}
}

// Blur5 implements gfx.Device with clamp-to-edge addressing.
func (d *Device) Blur5(src gfx.Target, horizontal bool) {
	d.Stats.Blurs++
	s := src.(*Target)
	dst := d.dst()
	w, h := min(dst.w, s.w), min(dst.h, s.h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := scale(s.Pixel(x, y), kernel5[0])
			for k := 1; k <= 2; k++ {
				var a, b gfx.Color
				if horizontal {
					a, b = s.Pixel(x-k, y), s.Pixel(x+k, y)
				} else {
					a, b = s.Pixel(x, y-k), s.Pixel(x, y+k)
				}
				c = add(c, scale(add(a, b), kernel5[k]))
			}
			dst.SetPixel(x, y, c)
		}
	}
}

// Blend implements gfx.Device. Operands of a different size than the
// bound target are sampled bilinearly.
func (d *Device) Blend(a, b gfx.Target, w float32) {
	d.Stats.Blends++
	ta, tb := a.(*Target), b.(*Target)
	dst := d.dst()
	for y := 0; y < dst.h; y++ {
		v := (float64(y) + 0.5) / float64(dst.h)
		for x := 0; x < dst.w; x++ {
			u := (float64(x) + 0.5) / float64(dst.w)
			ca := fetch(ta, dst, x, y, u, v)
			cb := fetch(tb, dst, x, y, u, v)
			dst.SetPixel(x, y, gfx.Color{
				R: Mix(ca.R, cb.R, w),
				G: Mix(ca.G, cb.G, w),
				B: Mix(ca.B, cb.B, w),
				A: Mix(ca.A, cb.A, w),
			})
		}
	}
}

// Draw implements gfx.Device.
func (d *Device) Draw(src gfx.Target, r gfx.Rect) {
	d.Stats.Draws++
	s := src.(*Target)
	dst := d.dst()
	dr := image.Rect(
		int(math.Round(float64(r.X))),
		int(math.Round(float64(r.Y))),
		int(math.Round(float64(r.X+r.W))),
		int(math.Round(float64(r.Y+r.H))),
	)
	if dr.Dx() == s.w && dr.Dy() == s.h {
		for y := 0; y < s.h; y++ {
			for x := 0; x < s.w; x++ {
				dst.SetPixel(dr.Min.X+x, dr.Min.Y+y, s.Pixel(x, y))
			}
		}
		return
	}
	xdraw.BiLinear.Scale(dst, dr, s, s.Bounds(), xdraw.Src, nil)
}

// Mix returns a*(1-w) + b*w, evaluated from the nearer end so that w=0
// yields a and w=1 yields b exactly.
func Mix(a, b, w float32) float32 {
	if w <= 0.5 {
		return a + (b-a)*w
	}
	return b + (a-b)*(1-w)
}

func fetch(t, dst *Target, x, y int, u, v float64) gfx.Color {
	if t.w == dst.w && t.h == dst.h {
		return t.Pixel(x, y)
	}
	return t.sample(u, v)
}

func scale(c gfx.Color, k float32) gfx.Color {
	return gfx.Color{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A * k}
}

func add(a, b gfx.Color) gfx.Color {
	return gfx.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B, A: a.A + b.A}
}

func floor(v float64) int {
	return int(math.Floor(v))
}
