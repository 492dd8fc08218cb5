package systems

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/pthm-cable/pwng/components"
	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
	"github.com/pthm-cable/pwng/gfx/soft"
	"github.com/pthm-cable/pwng/store"
)

func newSoftSystem(t *testing.T, w, h int, st *store.Store) (*RenderSystem, *soft.Device) {
	t.Helper()
	cfg := config.Default()
	dev := soft.NewDevice(w, h, cfg.Render.TextureSizeMax)
	logger, _ := bufferLogger()
	r := New(cfg, dev, st, logger, nil)
	if err := r.SetWindowSize(w, h); err != nil {
		t.Fatal(err)
	}
	return r, dev
}

func TestRenderPointCloudFrame(t *testing.T) {
	st := store.New()
	for i := 0; i < 50; i++ {
		st.AddStar(components.SystemPosition{X: float64(i) * 1e16}, 7e8, components.StarData{Temperature: 6000})
	}
	r, dev := newSoftSystem(t, 128, 128, st)
	r.BuildGalaxyMesh()
	r.Camera().Zoom.Set(1e-19)

	r.RenderScene()

	f := r.LastFrame()
	if f.Mode != ModePoints || f.Path != PathPyramid {
		t.Fatalf("expected point cloud on the pyramid path, got %s/%s", f.Mode, f.Path)
	}
	if f.Visible != 0 {
		t.Errorf("expected culling skipped in point mode, got %d visible", f.Visible)
	}
	if dev.Stats.Points == 0 {
		t.Error("expected points drawn")
	}
	center := dev.Display().Pixel(66, 64)
	corner := dev.Display().Pixel(2, 2)
	if center.R+center.G <= corner.R+corner.G {
		t.Errorf("expected glow along the star line, center %+v corner %+v", center, corner)
	}
}

func TestRenderCircleFrame(t *testing.T) {
	st := store.New()
	st.AddStar(components.SystemPosition{}, 7e8, components.StarData{Temperature: 5800})
	st.AddStar(components.SystemPosition{X: 1e15}, 7e8, components.StarData{Temperature: 5800})
	r, dev := newSoftSystem(t, 64, 64, st)
	r.BuildGalaxyMesh()
	r.Camera().Zoom.Set(1e-8)

	r.RenderScene()

	f := r.LastFrame()
	if f.Mode != ModeCircles || f.Path != PathDirect {
		t.Fatalf("expected circles on the direct path, got %s/%s", f.Mode, f.Path)
	}
	if f.Visible != 1 {
		t.Errorf("expected 1 visible star, got %d", f.Visible)
	}
	if dev.Stats.Circles != 1 {
		t.Errorf("expected 1 circle drawn, got %d", dev.Stats.Circles)
	}
	if c := dev.Display().Pixel(32, 32); c.R < 0.5 {
		t.Errorf("expected the star at the window center, got %+v", c)
	}
	if r.ScaleUnit() != UnitMillionKilometer || r.Scale() != 0 {
		t.Errorf("expected scale 10^0 Mkm, got 10^%d %s", r.Scale(), r.ScaleUnit())
	}
}

func TestRenderEmptyDataSet(t *testing.T) {
	r, dev := newSoftSystem(t, 32, 32, store.New())
	r.BuildGalaxyMesh()
	for _, z := range []float64{1e-21, 1e-10} {
		r.Camera().Zoom.Set(z)
		r.RenderScene()
	}
	if dev.Stats.Points != 0 || dev.Stats.Circles != 0 {
		t.Errorf("expected nothing drawn, got %d points %d circles", dev.Stats.Points, dev.Stats.Circles)
	}
}

func TestRenderInvalidHookLoggedOnce(t *testing.T) {
	st := store.New()
	e := st.AddStar(components.SystemPosition{X: 1e10}, 7e8, components.StarData{Temperature: 5800})
	cfg := config.Default()
	dev := soft.NewDevice(32, 32, cfg.Render.TextureSizeMax)
	logger, buf := bufferLogger()
	r := New(cfg, dev, st, logger, nil)
	if err := r.SetWindowSize(32, 32); err != nil {
		t.Fatal(err)
	}

	r.Camera().SetHook(e)
	r.Camera().Zoom.Set(1e-8)
	if err := st.Remove(e); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		r.RenderScene()
	}
	if n := strings.Count(buf.String(), "camera hook unresolved"); n != 1 {
		t.Errorf("expected one hook warning, got %d", n)
	}
}

func TestSetRenderResFactorClamps(t *testing.T) {
	st := store.New()
	cfg := config.Default()
	cfg.Render.TextureSizeMax = 256
	dev := soft.NewDevice(100, 100, 4096)
	logger, buf := bufferLogger()
	r := New(cfg, dev, st, logger, nil)
	if err := r.SetWindowSize(100, 100); err != nil {
		t.Fatal(err)
	}

	if err := r.SetRenderResFactor(8); err != nil {
		t.Fatal(err)
	}
	r.Camera().Zoom.Set(1)
	r.RenderScene()
	if got := r.LastFrame().ResFactor; got != 2.56 {
		t.Errorf("expected res factor clamped to 2.56, got %g", got)
	}
	if dev.Stats.MaxTargetSide > 256 {
		t.Errorf("expected no target above 256, got %d", dev.Stats.MaxTargetSide)
	}
	if !strings.Contains(buf.String(), "render res factor clamped") {
		t.Error("expected clamp diagnostic")
	}

	if err := r.SetRenderResFactor(0); err == nil {
		t.Error("expected error for zero factor")
	}
	if err := r.SetRenderResFactor(math.NaN()); err == nil {
		t.Error("expected error for NaN factor")
	}
}

func TestSetWindowSizeReallocates(t *testing.T) {
	r, dev := newSoftSystem(t, 64, 64, store.New())
	live := dev.Stats.TargetsLive
	if err := r.SetWindowSize(128, 96); err != nil {
		t.Fatal(err)
	}
	if dev.Stats.TargetsLive != live {
		t.Errorf("expected old targets released on resize, live %d -> %d", live, dev.Stats.TargetsLive)
	}
	if w := r.Levels()[0].Width(); w != 32 {
		t.Errorf("expected finest level 32 px wide, got %d", w)
	}
	r.Close()
	if dev.Stats.TargetsLive != 0 {
		t.Errorf("expected all targets released on close, got %d", dev.Stats.TargetsLive)
	}
}

func TestRenderBeforeSetupIsNoop(t *testing.T) {
	cfg := config.Default()
	dev := soft.NewDevice(16, 16, 64)
	r := New(cfg, dev, store.New(), nil, nil)
	r.RenderScene()
	if r.LastFrame().Frame != 0 || dev.Stats.Draws != 0 {
		t.Error("expected no frame before SetWindowSize")
	}
}

func TestDebugInsetsDrawLevels(t *testing.T) {
	r, dev := newSoftSystem(t, 64, 64, store.New())
	r.SetDebugInsets(true)
	r.Camera().Zoom.Set(1e-20)
	r.RenderScene()
	// One draw for the composite plus one per level
	if want := 1 + len(r.Levels()); dev.Stats.Draws != want {
		t.Errorf("expected %d draws with insets, got %d", want, dev.Stats.Draws)
	}
}

func TestEndToEndZoomSweep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping million-entity sweep in short mode")
	}

	const (
		entities = 1_000_000
		frames   = 500
		extent   = 1e21
	)
	st := store.New()
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < entities; i++ {
		pos := components.SystemPosition{
			X: (rng.Float64() - 0.5) * extent,
			Y: (rng.Float64() - 0.5) * extent,
		}
		st.AddStar(pos, 7e8*rng.Float64(), components.StarData{Temperature: 2000 + 40000*rng.Float64()})
	}

	cfg := config.Default()
	cfg.Render.TextureSizeMax = 128
	dev := &countingDevice{maxTex: 4096}
	logger, _ := bufferLogger()
	r := New(cfg, dev, st, logger, nil)
	if err := r.SetWindowSize(64, 64); err != nil {
		t.Fatal(err)
	}
	if err := r.SetRenderResFactor(4); err != nil {
		t.Fatal(err)
	}
	r.BuildGalaxyMesh()
	if r.MeshLen() != entities {
		t.Fatalf("expected %d points in mesh, got %d", entities, r.MeshLen())
	}

	zMin, zMax := cfg.Camera.ZoomMin, cfg.Camera.ZoomMax
	threshold := r.GalaxyZoom()
	half := frames / 2
	toCircles, toPoints := 0, 0
	prev := ModePoints
	for i := 0; i < frames; i++ {
		step := i
		if i >= half {
			step = frames - 1 - i
		}
		zoom := zMin * math.Pow(zMax/zMin, float64(step)/float64(half-1))
		r.Camera().Zoom.Set(zoom)
		r.RenderScene()

		f := r.LastFrame()
		want := ModePoints
		if f.Zoom >= threshold {
			want = ModeCircles
		}
		if f.Mode != want {
			t.Fatalf("frame %d zoom %g: expected %s, got %s", i, f.Zoom, want, f.Mode)
		}
		if i > 0 && f.Mode != prev {
			if f.Mode == ModeCircles {
				toCircles++
			} else {
				toPoints++
			}
		}
		prev = f.Mode
	}

	if toCircles != 1 || toPoints != 1 {
		t.Errorf("expected one switch each way, got %d to circles and %d to points", toCircles, toPoints)
	}
	if dev.maxSide > 128 {
		t.Errorf("expected no target above the 128 px ceiling, got %d", dev.maxSide)
	}
	if got := r.LastFrame().ResFactor; got != 2 {
		t.Errorf("expected res factor clamped to 2, got %g", got)
	}
	if dev.points == 0 || dev.circles == 0 {
		t.Errorf("expected both representations drawn, got %d points %d circles", dev.points, dev.circles)
	}
}

var _ gfx.Device = (*countingDevice)(nil)
