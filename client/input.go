package client

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard and mouse input.
func (c *Client) handleInput() {
	// Window resize propagation
	c.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyF1) {
		c.render.SetDebugInsets(!c.render.DebugInsets())
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		c.showPerf = !c.showPerf
	}

	// Supersampling factor of the direct path
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		c.setResFactor(c.render.LastFrame().ResFactor * 2)
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		c.setResFactor(c.render.LastFrame().ResFactor / 2)
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		c.cycleHook()
	}

	c.handleCameraInput()
}

// handleResize checks for window resize and reallocates render targets.
func (c *Client) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	if w == c.width && h == c.height {
		return
	}
	if err := c.render.SetWindowSize(w, h); err != nil {
		c.logger.Error("failed to resize render targets", "width", w, "height", h, "error", err)
		return
	}
	c.width, c.height = w, h
	c.perfPanel.SetPosition(int32(w)-250, 44)
}

// handleCameraInput processes camera pan/zoom controls.
func (c *Client) handleCameraInput() {
	cam := c.render.Camera()

	// Each wheel notch multiplies the zoom target; ctrl gives finer steps
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := c.cfg.Camera.WheelFactor
		if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
			factor = c.cfg.Camera.WheelFactorSlow
		}
		if wheel < 0 {
			factor = 1 / factor
		}
		cam.Zoom.ZoomBy(factor)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.Zoom.ZoomBy(10)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.Zoom.ZoomBy(0.1)
	}

	// Drag to pan
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		c.dragging = true
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		c.dragging = false
	}
	if c.dragging {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			cam.Pan(float64(d.X), float64(d.Y))
		}
	}

	if rl.IsKeyPressed(rl.KeyR) {
		cam.Reset()
	}
}

func (c *Client) setResFactor(f float64) {
	if err := c.render.SetRenderResFactor(f); err != nil {
		c.logger.Warn("res factor rejected", "factor", f, "error", err)
	}
}

// cycleHook moves the camera to the next named entity, then back to
// free flight after the last one.
func (c *Client) cycleHook() {
	cam := c.render.Camera()
	named := c.store.Named()
	c.hookIdx++
	if c.hookIdx >= len(named) {
		c.hookIdx = -1
		cam.ClearHook()
		cam.Reset()
		c.logger.Debug("camera hook cleared")
		return
	}
	cam.SetHook(named[c.hookIdx])
	c.logger.Debug("camera hooked", "name", c.hookName())
}

func (c *Client) hookName() string {
	cam := c.render.Camera()
	if !cam.Hooked {
		return ""
	}
	name, ok := c.store.Name(cam.Hook)
	if !ok {
		return "(gone)"
	}
	return name
}
