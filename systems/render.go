package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pwng/camera"
	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
	"github.com/pthm-cable/pwng/palette"
	"github.com/pthm-cable/pwng/store"
	"github.com/pthm-cable/pwng/telemetry"
)

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Frame     int64
	Zoom      float64
	Mode      Mode
	Path      Path
	Visible   int
	ResFactor float64
	Levels    int
	Duration  time.Duration
}

// Record converts the stats to a frames.csv row.
func (f FrameStats) Record() telemetry.FrameRecord {
	return telemetry.FrameRecord{
		Frame:     f.Frame,
		Zoom:      f.Zoom,
		Mode:      f.Mode.String(),
		Path:      f.Path.String(),
		Visible:   f.Visible,
		ResFactor: f.ResFactor,
		Levels:    f.Levels,
		RenderUS:  f.Duration.Microseconds(),
	}
}

// RenderSystem runs the per-frame pipeline: zoom easing, culling, either
// the pyramid path (levels, combine, temporal) or the direct path, then
// compositing and the scale bar.
type RenderSystem struct {
	cfg    *config.Config
	dev    gfx.Device
	store  *store.Store
	logger *slog.Logger
	perf   *telemetry.PerfCollector

	cam        *camera.State
	galaxy     *GalaxyRenderer
	visible    VisibleSet
	pyramid    *Pyramid
	temporal   *Temporal
	direct     *Direct
	compositor Compositor

	clear      gfx.Color
	galaxyZoom float64
	directZoom float64
	ceiling    int

	width, height int
	ready         bool

	scale      Scale
	mode       Mode
	path       Path
	started    bool
	frame      int64
	last       FrameStats
	warnedHook ecs.Entity
	hookWarned bool
}

// New creates a render system. Targets are allocated by SetWindowSize.
// logger and perf may be nil.
func New(cfg *config.Config, dev gfx.Device, st *store.Store, logger *slog.Logger, perf *telemetry.PerfCollector) *RenderSystem {
	if logger == nil {
		logger = slog.Default()
	}
	if perf == nil {
		perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}
	ceiling := min(cfg.Render.TextureSizeMax, dev.MaxTextureSize())

	return &RenderSystem{
		cfg:    cfg,
		dev:    dev,
		store:  st,
		logger: logger,
		perf:   perf,
		cam: camera.New(cfg.Camera.ZoomDefault, cfg.Camera.ZoomMin,
			cfg.Camera.ZoomMax, cfg.Camera.ZoomSteps),
		galaxy:   NewGalaxyRenderer(cfg, palette.FromConfig(cfg.Palette)),
		pyramid:  NewPyramid(cfg.Pyramid),
		temporal: NewTemporal(cfg.Temporal),
		direct:   NewDirect(cfg.Render.ResFactor),
		compositor: Compositor{
			DebugInsets:   cfg.Render.DebugInsets,
			InsetFraction: cfg.Render.InsetFraction,
		},
		clear:      gfx.RGB3(cfg.Render.ClearColor),
		galaxyZoom: cfg.Derived.GalaxyZoom,
		directZoom: cfg.Derived.DirectZoom,
		ceiling:    ceiling,
	}
}

// Camera returns the camera for the host to drive.
func (r *RenderSystem) Camera() *camera.State { return r.cam }

// Perf returns the pass timing collector.
func (r *RenderSystem) Perf() *telemetry.PerfCollector { return r.perf }

// Scale returns the scale bar's decimal exponent.
func (r *RenderSystem) Scale() int { return r.scale.Exponent }

// ScaleUnit returns the scale bar's unit.
func (r *RenderSystem) ScaleUnit() ScaleUnit { return r.scale.Unit }

// ScaleInfo returns the full scale bar calibration.
func (r *RenderSystem) ScaleInfo() Scale { return r.scale }

// Mode returns the representation used by the last frame.
func (r *RenderSystem) Mode() Mode { return r.mode }

// LastFrame returns statistics of the last rendered frame.
func (r *RenderSystem) LastFrame() FrameStats { return r.last }

// Levels returns the allocated pyramid levels.
func (r *RenderSystem) Levels() []Level { return r.pyramid.Levels() }

// GalaxyZoom returns the point-cloud threshold.
func (r *RenderSystem) GalaxyZoom() float64 { return r.galaxyZoom }

// DirectZoom returns the direct-path threshold.
func (r *RenderSystem) DirectZoom() float64 { return r.directZoom }

// SetDebugInsets toggles the pyramid level insets.
func (r *RenderSystem) SetDebugInsets(on bool) { r.compositor.DebugInsets = on }

// DebugInsets reports whether insets are drawn.
func (r *RenderSystem) DebugInsets() bool { return r.compositor.DebugInsets }

// SetWindowSize reallocates every target for a w×h window. It is the
// graphics setup call and must run before the first RenderScene.
func (r *RenderSystem) SetWindowSize(w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("window size %dx%d: non-positive", w, h)
	}
	r.width, r.height = w, h
	r.ready = false

	if err := r.pyramid.Resize(r.dev, w, h, r.ceiling, r.logger); err != nil {
		return fmt.Errorf("allocating pyramid: %w", err)
	}
	lv := r.pyramid.Levels()
	if err := r.temporal.Resize(r.dev, lv[0].Width(), lv[0].Height()); err != nil {
		return fmt.Errorf("allocating temporal history: %w", err)
	}
	if err := r.resizeDirect(); err != nil {
		return err
	}

	r.ready = true
	r.logger.Debug("render targets allocated",
		"width", w,
		"height", h,
		"levels", len(lv),
		"res_factor", r.direct.Factor(),
	)
	return nil
}

// SetRenderResFactor changes the direct-path supersampling factor. A
// factor that would exceed the texture ceiling is clamped and logged.
func (r *RenderSystem) SetRenderResFactor(f float64) error {
	if !(f > 0) || math.IsInf(f, 0) {
		return fmt.Errorf("render res factor %g: must be positive", f)
	}
	r.direct.SetRequested(f)
	if r.width == 0 {
		return nil
	}
	return r.resizeDirect()
}

func (r *RenderSystem) resizeDirect() error {
	clamped, err := r.direct.Resize(r.dev, r.width, r.height, r.ceiling)
	if err != nil {
		r.ready = false
		return fmt.Errorf("allocating direct target: %w", err)
	}
	if clamped {
		r.logger.Warn("render res factor clamped",
			"requested", r.direct.Requested(),
			"effective", r.direct.Factor(),
			"ceiling", r.ceiling,
			"error", gfx.ErrResourceLimitExceeded,
		)
	}
	return nil
}

// BuildGalaxyMesh bakes the point cloud from the current stars. Call it
// once the initial bulk load is complete.
func (r *RenderSystem) BuildGalaxyMesh() {
	err := r.galaxy.Build(r.store)
	if errors.Is(err, store.ErrEmptyDataSet) {
		r.logger.Warn("galaxy mesh is empty", "error", err)
		return
	}
	r.logger.Info("galaxy mesh built", "points", r.galaxy.MeshLen())
}

// MeshLen returns the number of baked points.
func (r *RenderSystem) MeshLen() int { return r.galaxy.MeshLen() }

// Close releases every target.
func (r *RenderSystem) Close() {
	r.pyramid.Release(r.dev)
	r.temporal.Release(r.dev)
	r.direct.Release(r.dev)
	r.ready = false
}

// RenderScene renders one frame onto the display.
func (r *RenderSystem) RenderScene() {
	if !r.ready {
		return
	}
	start := time.Now()
	r.perf.StartFrame()

	r.perf.StartPhase(telemetry.PhaseZoom)
	r.cam.Zoom.Update()
	zoom := r.cam.Zoom.Current
	off := r.resolveCamera()

	mode := ModePoints
	if zoom >= r.galaxyZoom {
		mode = ModeCircles
	}
	path := PathPyramid
	if zoom >= r.directZoom {
		path = PathDirect
	}
	r.switchTo(mode, path, zoom)

	r.perf.StartPhase(telemetry.PhaseCull)
	if mode == ModeCircles {
		Cull(&r.visible, r.store, off, zoom, r.width, r.height)
	} else {
		r.visible.Reset()
	}

	var final gfx.Target
	if path == PathDirect {
		r.perf.StartPhase(telemetry.PhaseDirect)
		final = r.direct.Render(r.dev, r.clear, r.width, r.height, func(p pass) {
			r.galaxy.DrawCircles(r.dev, r.store, &r.visible, zoom, p)
		})
	} else {
		r.perf.StartPhase(telemetry.PhasePyramid)
		r.pyramid.Render(r.dev, r.clear, func(l *Level) {
			p := pass{factor: l.Fraction, winW: r.width, winH: r.height, tw: l.Width(), th: l.Height()}
			if mode == ModeCircles {
				r.galaxy.DrawCircles(r.dev, r.store, &r.visible, zoom, p)
			} else {
				r.galaxy.DrawPoints(r.dev, off, zoom, p)
			}
		})

		r.perf.StartPhase(telemetry.PhaseCombine)
		combined := r.pyramid.Combine(r.dev)

		r.perf.StartPhase(telemetry.PhaseTemporal)
		final = r.temporal.Apply(r.dev, combined, r.temporal.Weight(zoom, r.directZoom))
	}

	r.perf.StartPhase(telemetry.PhaseComposite)
	r.compositor.Compose(r.dev, final, r.width, r.height, r.pyramid.Levels())

	r.perf.StartPhase(telemetry.PhaseScaleBar)
	r.scale = ComputeScale(zoom, r.width, r.cfg.ScaleBar.MaxWidthFraction)
	gfx.WithTarget(r.dev, nil, func() {
		DrawScaleBar(r.dev, r.scale, r.width, r.height, r.cfg.ScaleBar)
	})

	r.perf.EndFrame()
	r.last = FrameStats{
		Frame:     r.frame,
		Zoom:      zoom,
		Mode:      mode,
		Path:      path,
		Visible:   r.visible.Len(),
		ResFactor: r.direct.Factor(),
		Levels:    len(r.pyramid.Levels()),
		Duration:  time.Since(start),
	}
	r.frame++
}

// resolveCamera resolves the hook, warning once per unresolvable hook.
func (r *RenderSystem) resolveCamera() camera.Offset {
	off, err := r.cam.Resolve(r.store)
	if err == nil {
		r.hookWarned = false
		return off
	}
	if !r.hookWarned || r.warnedHook != r.cam.Hook {
		r.hookWarned = true
		r.warnedHook = r.cam.Hook
		r.logger.Warn("camera hook unresolved, using zero offset", "error", err)
	}
	return off
}

// switchTo records mode and path changes. Entering the pyramid path drops
// the temporal history, which is stale after any direct-path frames.
func (r *RenderSystem) switchTo(mode Mode, path Path, zoom float64) {
	if r.started && mode == r.mode && path == r.path {
		return
	}
	if path == PathPyramid && (!r.started || r.path != PathPyramid) {
		r.temporal.Reset()
	}
	if r.started {
		r.logger.Debug("render mode switched",
			"mode", mode.String(),
			"path", path.String(),
			"zoom", zoom,
		)
	}
	r.mode, r.path, r.started = mode, path, true
}
