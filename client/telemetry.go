package client

// endFrame records the frame and flushes perf stats every log interval.
func (c *Client) endFrame() {
	last := c.render.LastFrame()
	c.frames.Add(last.Duration)
	if err := c.output.WriteFrame(last.Record()); err != nil {
		c.logger.Error("failed to write frame", "error", err)
	}
	c.frame++

	interval := int64(c.cfg.Telemetry.LogInterval)
	if interval <= 0 || c.frame%interval != 0 {
		return
	}

	perfStats := c.render.Perf().Stats()
	perfStats.LogStats(c.logger)
	c.logger.Info("frame times",
		"frame", c.frame,
		"zoom", last.Zoom,
		"mode", last.Mode.String(),
		"times", c.frames.Summary(),
	)
	if err := c.output.WritePerf(perfStats, c.frame); err != nil {
		c.logger.Error("failed to write perf", "error", err)
	}
}
