// Package renderer implements gfx.Device on the GPU through raylib.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pwng/gfx"
)

// Quads per rlgl batch chunk; raylib's default batch holds 8192.
const pointChunk = 4096

// Target is a raylib render texture.
type Target struct {
	rt rl.RenderTexture2D
}

func (t *Target) Width() int  { return int(t.rt.Texture.Width) }
func (t *Target) Height() int { return int(t.rt.Texture.Height) }

// Texture returns the color attachment.
func (t *Target) Texture() rl.Texture2D { return t.rt.Texture }

// Device draws through raylib. The display is the window framebuffer, so
// display draws must happen between rl.BeginDrawing and rl.EndDrawing.
type Device struct {
	maxTex int
	bound  *Target
	blur   BlurShader
	blend  BlendShader
}

// NewDevice creates a device with the given texture ceiling.
func NewDevice(maxTex int) *Device {
	return &Device{maxTex: maxTex}
}

// Init loads the pass shaders (must be called after the raylib window is created).
func (d *Device) Init() {
	d.blur.Init()
	d.blend.Init()
}

// Unload frees the pass shaders.
func (d *Device) Unload() {
	d.blur.Unload()
	d.blend.Unload()
}

// MaxTextureSize implements gfx.Device.
func (d *Device) MaxTextureSize() int { return d.maxTex }

// NewTarget implements gfx.Device.
func (d *Device) NewTarget(w, h int) (gfx.Target, error) {
	if err := gfx.CheckSize(w, h, d.maxTex); err != nil {
		return nil, err
	}
	rt := rl.LoadRenderTexture(int32(w), int32(h))
	if !rl.IsRenderTextureValid(rt) {
		return nil, fmt.Errorf("render texture %dx%d: %w", w, h, gfx.ErrResourceLimitExceeded)
	}
	rl.SetTextureFilter(rt.Texture, rl.FilterBilinear)
	t := &Target{rt: rt}

	gfx.WithTarget(d, t, func() {
		rl.ClearBackground(rl.Blank)
	})
	return t, nil
}

// ReleaseTarget implements gfx.Device.
func (d *Device) ReleaseTarget(t gfx.Target) {
	rt, ok := t.(*Target)
	if !ok || rt == nil {
		return
	}
	if d.bound == rt {
		rl.EndTextureMode()
		d.bound = nil
	}
	rl.UnloadRenderTexture(rt.rt)
}

// Bind implements gfx.Device. raylib has a single texture-mode slot, so
// switching targets ends the previous texture mode first.
func (d *Device) Bind(t gfx.Target) gfx.Target {
	var prev gfx.Target
	if d.bound != nil {
		prev = d.bound
		rl.EndTextureMode()
	}
	d.bound = nil
	if t != nil {
		d.bound = t.(*Target)
		rl.BeginTextureMode(d.bound.rt)
	}
	return prev
}

func (d *Device) boundSize() (float32, float32) {
	if d.bound != nil {
		return float32(d.bound.Width()), float32(d.bound.Height())
	}
	return float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
}

// Clear implements gfx.Device.
func (d *Device) Clear(c gfx.Color) {
	rl.ClearBackground(toRL(c))
}

// DrawPoints implements gfx.Device. The transform runs on the rlgl matrix
// stack so the mesh is submitted in meters.
func (d *Device) DrawPoints(pts []gfx.PointVertex, xf gfx.Transform, size float32) {
	if len(pts) == 0 || xf.Scale == 0 {
		return
	}
	half := float32(float64(size) / 2 / xf.Scale)

	rl.PushMatrix()
	rl.Translatef(float32(xf.CenterX), float32(xf.CenterY), 0)
	rl.Scalef(float32(xf.Scale), float32(xf.Scale), 1)
	rl.Translatef(float32(xf.OffsetX), float32(xf.OffsetY), 0)

	for start := 0; start < len(pts); start += pointChunk {
		end := min(start+pointChunk, len(pts))
		rl.CheckRenderBatchLimit(int32(end-start) * 4)
		rl.Begin(rl.Quads)
		for _, p := range pts[start:end] {
			r, g, b, a := p.Color.RGBA8()
			rl.Color4ub(r, g, b, a)
			rl.Vertex2f(p.X-half, p.Y-half)
			rl.Vertex2f(p.X-half, p.Y+half)
			rl.Vertex2f(p.X+half, p.Y+half)
			rl.Vertex2f(p.X+half, p.Y-half)
		}
		rl.End()
	}

	rl.PopMatrix()
}

// DrawCircle implements gfx.Device.
func (d *Device) DrawCircle(x, y, r float32, segments int, c gfx.Color) {
	rl.DrawCircleSector(rl.Vector2{X: x, Y: y}, r, 0, 360, int32(segments), toRL(c))
}

// DrawLine implements gfx.Device.
func (d *Device) DrawLine(x0, y0, x1, y1, thick float32, c gfx.Color) {
	rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, thick, toRL(c))
}

// Blur5 implements gfx.Device.
func (d *Device) Blur5(src gfx.Target, horizontal bool) {
	s := src.(*Target)
	d.blur.Begin(s.rt.Texture.Width, s.rt.Texture.Height, horizontal)
	d.stretch(s, gfx.Rect{})
	rl.EndShaderMode()
}

// Blend implements gfx.Device.
func (d *Device) Blend(a, b gfx.Target, w float32) {
	ta, tb := a.(*Target), b.(*Target)
	d.blend.Begin(tb.rt.Texture, w)
	d.stretch(ta, gfx.Rect{})
	rl.EndShaderMode()
}

// Draw implements gfx.Device.
func (d *Device) Draw(src gfx.Target, r gfx.Rect) {
	d.stretch(src.(*Target), r)
}

// stretch draws t into r of the bound target, or over all of it when r
// is empty. Render textures are stored bottom-up, hence the negative
// source height.
func (d *Device) stretch(t *Target, r gfx.Rect) {
	if r.W == 0 || r.H == 0 {
		w, h := d.boundSize()
		r = gfx.Rect{W: w, H: h}
	}
	tw, th := float32(t.rt.Texture.Width), float32(t.rt.Texture.Height)
	src := rl.Rectangle{X: 0, Y: 0, Width: tw, Height: -th}
	dst := rl.Rectangle{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
	rl.DrawTexturePro(t.rt.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

func toRL(c gfx.Color) rl.Color {
	r, g, b, a := c.RGBA8()
	return rl.Color{R: r, G: g, B: b, A: a}
}
