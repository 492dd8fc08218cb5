// Package client is the viewer host: it owns the window, drains the
// ingest queue into the store and drives the render system once per
// frame.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pwng/camera"
	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
	"github.com/pthm-cable/pwng/gfx/soft"
	"github.com/pthm-cable/pwng/ingest"
	"github.com/pthm-cable/pwng/renderer"
	"github.com/pthm-cable/pwng/store"
	"github.com/pthm-cable/pwng/systems"
	"github.com/pthm-cable/pwng/telemetry"
	"github.com/pthm-cable/pwng/ui"
)

const controlsText = "Wheel: zoom (ctrl: fine)  Drag: pan  Tab: hook  R: reset  [ ]: res factor  F1: insets  F3: perf"

// Options configures a client.
type Options struct {
	OutputDir string
	Headless  bool
	Logger    *slog.Logger
}

// Client holds the complete viewer state.
type Client struct {
	cfg    *config.Config
	logger *slog.Logger

	store  *store.Store
	queue  *ingest.Queue
	source *ingest.Source
	cancel context.CancelFunc
	done   chan error

	dev    gfx.Device
	gpu    *renderer.Device // nil when headless
	cpu    *soft.Device     // nil when graphical
	render *systems.RenderSystem

	registry *systems.PassRegistry
	frames   *telemetry.FrameTimes
	output   *telemetry.OutputManager

	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	showPerf  bool

	headless  bool
	meshBuilt bool
	hookIdx   int
	frame     int64
	sweep     camera.Sweep

	width, height int
	dragging      bool
}

// New creates a client. In graphical mode the raylib window must
// already be open. The synthetic source starts immediately; headless
// clients wait for the initial load so runs are reproducible.
func New(cfg *config.Config, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}

	c := &Client{
		cfg:      cfg,
		logger:   logger,
		store:    store.New(),
		queue:    ingest.NewQueue(),
		registry: systems.NewPassRegistry(),
		frames:   telemetry.NewFrameTimes(cfg.Telemetry.PerfWindow),
		output:   output,
		headless: opts.Headless,
		width:    cfg.Screen.Width,
		height:   cfg.Screen.Height,
		hookIdx:  -1,
		done:     make(chan error, 1),
		sweep:    camera.NewSweep(cfg.Camera.ZoomMin, cfg.Camera.ZoomMax, sweepFrames),
	}

	if c.headless {
		c.cpu = soft.NewDevice(c.width, c.height, cfg.Render.TextureSizeMax)
		c.dev = c.cpu
	} else {
		c.width, c.height = rl.GetScreenWidth(), rl.GetScreenHeight()
		c.gpu = renderer.NewDevice(cfg.Render.TextureSizeMax)
		c.gpu.Init()
		c.dev = c.gpu
		c.hud = ui.NewHUD()
		c.perfPanel = ui.NewPerfPanel(int32(c.width)-250, 44, 240)
	}

	c.render = systems.New(cfg, c.dev, c.store, logger, nil)
	if err := c.render.SetWindowSize(c.width, c.height); err != nil {
		c.Unload()
		return nil, fmt.Errorf("setting up render targets: %w", err)
	}
	c.render.SetDebugInsets(cfg.Render.DebugInsets)

	c.source = ingest.NewSource(cfg.Synth, c.queue, logger)
	ctx, cancel := context.WithCancel(context.Background())
	if c.headless {
		if err := c.source.Load(ctx); err != nil {
			cancel()
			c.Unload()
			return nil, fmt.Errorf("loading synthetic galaxy: %w", err)
		}
		c.drain()
	}
	c.cancel = cancel
	go func() {
		if c.headless {
			c.done <- c.source.Orbit(ctx, orbitTick)
			return
		}
		c.done <- c.source.Run(ctx)
	}()

	logger.Info("client started",
		"headless", c.headless,
		"width", c.width,
		"height", c.height,
		"galaxy_zoom", c.render.GalaxyZoom(),
		"direct_zoom", c.render.DirectZoom(),
	)
	return c, nil
}

// Update drains pending changes and handles input.
func (c *Client) Update() {
	c.drain()
	c.handleInput()
}

// Draw renders one frame to the window.
func (c *Client) Draw() {
	rl.BeginDrawing()

	c.render.RenderScene()
	c.drawUI()

	rl.EndDrawing()

	c.render.Perf().RecordPresent()
	c.endFrame()
}

func (c *Client) drawUI() {
	data := ui.HUDData{
		Title:        c.cfg.Screen.Title,
		Frame:        c.render.LastFrame(),
		Scale:        c.render.ScaleInfo(),
		Stars:        c.render.MeshLen(),
		Hook:         c.hookName(),
		FPS:          rl.GetFPS(),
		DebugInsets:  c.render.DebugInsets(),
		ScreenWidth:  int32(c.width),
		ScreenHeight: int32(c.height),
	}
	if c.hud.Draw(data, c.cfg.ScaleBar.YOffset, c.cfg.ScaleBar.CapHeight) {
		c.render.SetDebugInsets(!c.render.DebugInsets())
	}
	c.hud.DrawControls(int32(c.height), controlsText)

	if c.showPerf {
		c.perfPanel.Draw(ui.PerfPanelData{
			Stats:    c.render.Perf().Stats(),
			Frames:   c.frames.Summary(),
			Path:     c.render.LastFrame().Path,
			Registry: c.registry,
		})
	}
}

// drain applies queued changes and builds the galaxy mesh once the
// initial load is complete.
func (c *Client) drain() {
	res := c.queue.Drain(c.store)
	if res.Failed > 0 {
		c.logger.Warn("dropped entity changes",
			"failed", res.Failed,
			"applied", res.Applied,
			"error", res.Err,
		)
	}
	if res.BulkDone && !c.meshBuilt {
		c.render.BuildGalaxyMesh()
		c.meshBuilt = true
	}
}

// Frame returns the number of frames drawn.
func (c *Client) Frame() int64 { return c.frame }

// Render returns the render system.
func (c *Client) Render() *systems.RenderSystem { return c.render }

// Store returns the entity store.
func (c *Client) Store() *store.Store { return c.store }

// Unload stops the source and frees every resource.
func (c *Client) Unload() {
	if c.cancel != nil {
		c.cancel()
		if err := <-c.done; err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("synthetic source failed", "error", err)
		}
		c.cancel = nil
	}
	if c.render != nil {
		c.render.Close()
	}
	if c.gpu != nil {
		c.gpu.Unload()
	}
	if err := c.output.Close(); err != nil {
		c.logger.Error("failed to close output", "error", err)
	}
}
