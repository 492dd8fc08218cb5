package systems

import "github.com/pthm-cable/pwng/telemetry"

// PassInfo describes a render pass for UI display.
type PassInfo struct {
	ID          string // Perf phase identifier
	Name        string // Display name
	Description string // What this pass does
	Path        string // "all", "pyramid" or "direct"
}

// PassRegistry holds metadata about all render passes.
// This centralizes pass naming so the HUD and perf tracker stay in sync.
type PassRegistry struct {
	passes []PassInfo
	byID   map[string]PassInfo
}

// NewPassRegistry creates a registry with all known passes.
func NewPassRegistry() *PassRegistry {
	reg := &PassRegistry{
		byID: make(map[string]PassInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all passes in pipeline order.
// Update this when adding new passes.
func (r *PassRegistry) registerDefaults() {
	r.Register(PassInfo{ID: telemetry.PhaseZoom, Name: "Zoom", Description: "Eases zoom toward its target", Path: "all"})
	r.Register(PassInfo{ID: telemetry.PhaseCull, Name: "Cull", Description: "Collects entities inside the window", Path: "all"})

	r.Register(PassInfo{ID: telemetry.PhasePyramid, Name: "Pyramid", Description: "Renders and blurs each sub-resolution level", Path: "pyramid"})
	r.Register(PassInfo{ID: telemetry.PhaseCombine, Name: "Combine", Description: "Blends levels coarse to fine", Path: "pyramid"})
	r.Register(PassInfo{ID: telemetry.PhaseTemporal, Name: "Temporal", Description: "Blends with the previous frame", Path: "pyramid"})

	r.Register(PassInfo{ID: telemetry.PhaseDirect, Name: "Direct", Description: "Supersampled circle render", Path: "direct"})

	r.Register(PassInfo{ID: telemetry.PhaseComposite, Name: "Composite", Description: "Scales the result onto the window", Path: "all"})
	r.Register(PassInfo{ID: telemetry.PhaseScaleBar, Name: "Scale Bar", Description: "Draws the distance scale", Path: "all"})
}

// Register adds a pass to the registry.
func (r *PassRegistry) Register(info PassInfo) {
	r.passes = append(r.passes, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a pass ID.
// Falls back to the ID itself if not found.
func (r *PassRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// ForPath returns the passes that run on a render path, in order.
func (r *PassRegistry) ForPath(p Path) []PassInfo {
	var result []PassInfo
	for _, info := range r.passes {
		if info.Path == "all" || info.Path == p.String() {
			result = append(result, info)
		}
	}
	return result
}
