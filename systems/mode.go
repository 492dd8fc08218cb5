package systems

// Mode is how stars are represented in a frame.
type Mode int

const (
	ModePoints  Mode = iota // Pre-baked point cloud, no culling
	ModeCircles             // Culled, per-entity circles sized by radius
)

func (m Mode) String() string {
	if m == ModeCircles {
		return "circles"
	}
	return "points"
}

// Path is which render path produced a frame.
type Path int

const (
	PathPyramid Path = iota
	PathDirect
)

func (p Path) String() string {
	if p == PathDirect {
		return "direct"
	}
	return "pyramid"
}
