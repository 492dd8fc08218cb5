package systems

import (
	"bytes"
	"log/slog"

	"github.com/pthm-cable/pwng/gfx"
)

// countingDevice implements gfx.Device without pixels, for tests that
// only care about allocation limits and draw counts.
type countingDevice struct {
	maxTex  int
	maxSide int
	live    int
	points  int
	circles int
	bound   gfx.Target
}

type countingTarget struct{ w, h int }

func (t *countingTarget) Width() int  { return t.w }
func (t *countingTarget) Height() int { return t.h }

func (d *countingDevice) MaxTextureSize() int { return d.maxTex }

func (d *countingDevice) NewTarget(w, h int) (gfx.Target, error) {
	if err := gfx.CheckSize(w, h, d.maxTex); err != nil {
		return nil, err
	}
	d.maxSide = max(d.maxSide, w, h)
	d.live++
	return &countingTarget{w, h}, nil
}

func (d *countingDevice) ReleaseTarget(t gfx.Target) {
	if t != nil {
		d.live--
	}
}

func (d *countingDevice) Bind(t gfx.Target) gfx.Target {
	prev := d.bound
	d.bound = t
	return prev
}

func (d *countingDevice) Clear(gfx.Color) {}

func (d *countingDevice) DrawPoints(pts []gfx.PointVertex, _ gfx.Transform, _ float32) {
	d.points += len(pts)
}

func (d *countingDevice) DrawCircle(_, _, _ float32, _ int, _ gfx.Color) { d.circles++ }

func (d *countingDevice) DrawLine(_, _, _, _, _ float32, _ gfx.Color) {}
func (d *countingDevice) Blur5(gfx.Target, bool)                       {}
func (d *countingDevice) Blend(_, _ gfx.Target, _ float32)             {}
func (d *countingDevice) Draw(gfx.Target, gfx.Rect)                    {}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
