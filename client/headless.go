package client

import "time"

const (
	// Frames for one pass over the zoom range in headless mode
	sweepFrames = 600
	orbitTick   = 50 * time.Millisecond
)

// UpdateHeadless renders one frame on the CPU device with the scripted zoom.
func (c *Client) UpdateHeadless() {
	c.drain()
	c.render.Camera().Zoom.Set(c.sweep.At(c.frame))
	c.render.RenderScene()
	c.render.Perf().RecordPresent()
	c.endFrame()
}
