// Package ui draws the on-screen overlays of the viewer.
package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pwng/systems"
	"github.com/pthm-cable/pwng/telemetry"
)

// raygui's default text size
const guiTextSize = 10

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Frame        systems.FrameStats
	Scale        systems.Scale
	Stars        int
	Hook         string
	FPS          int32
	DebugInsets  bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD and reports whether the inset toggle was clicked.
func (h *HUD) Draw(data HUDData, yOffset, capHeight float64) bool {
	r := h.renderer
	f := data.Frame

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(36)
	y = r.DrawLabelValue(10, y, "Zoom", fmt.Sprintf("%.3e px/m", f.Zoom))
	y = r.DrawLabelValue(10, y, "Mode", fmt.Sprintf("%s / %s", f.Mode, f.Path))
	y = r.DrawLabelValue(10, y, "Stars", fmt.Sprintf("%d (%d visible)", data.Stars, f.Visible))
	if f.Path == systems.PathDirect {
		y = r.DrawLabelValue(10, y, "Res", fmt.Sprintf("%gx", f.ResFactor))
	} else {
		y = r.DrawLabelValue(10, y, "Levels", fmt.Sprintf("%d", f.Levels))
	}
	if data.Hook != "" {
		y = r.DrawLabelValue(10, y, "Hook", data.Hook)
	}
	r.DrawLabelValue(10, y, "FPS", fmt.Sprintf("%d", data.FPS))

	// Scale label sits above the bar's caps
	if data.Scale.Pixels > 0 {
		label := data.Scale.Label()
		w := float32(rl.MeasureText(label, guiTextSize)) + 4
		gui.Label(rl.Rectangle{
			X:      float32(data.ScreenWidth)/2 - w/2,
			Y:      float32(float64(data.ScreenHeight) - yOffset - capHeight - 16),
			Width:  w,
			Height: 14,
		}, label)
	}

	text := "Insets: off"
	if data.DebugInsets {
		text = "Insets: on"
	}
	return gui.Button(rl.Rectangle{X: float32(data.ScreenWidth) - 100, Y: 10, Width: 90, Height: 24}, text)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-20, 12, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats    telemetry.PerfStats
	Frames   telemetry.FrameSummary
	Path     systems.Path
	Registry *systems.PassRegistry
}

// PerfPanel renders the render pass timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Only the passes of the active path are listed.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight - 2
	passes := data.Registry.ForPath(data.Path)

	height := pad*2 + r.Theme.LineHeight + 2 + line*int32(len(passes)+2)
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Render Passes")

	rl.DrawText(fmt.Sprintf("Frame: %s", data.Stats.AvgFrameDuration.Round(time.Microsecond)), x, y, 12, r.Theme.SectionHeader)
	y += line

	for _, info := range passes {
		avg := data.Stats.PhaseAvg[info.ID]
		pct := data.Stats.PhasePct[info.ID]
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", data.Registry.GetName(info.ID), avg.Round(time.Microsecond), pct),
			x, y, 12, r.PctColor(pct),
		)
		y += line
	}

	rl.DrawText(
		fmt.Sprintf("p95 %.2fms  sd %.2fms", data.Frames.P95MS, data.Frames.StdMS),
		x, y, 12, r.Theme.LabelColor,
	)
}
