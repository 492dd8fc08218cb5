// Package components defines ECS components for galaxy entities.
package components

// SystemPosition is an entity's position in the galaxy frame, in meters.
type SystemPosition struct {
	X, Y float64
}

// LocalPosition is an optional offset relative to the owning system, in meters.
// Planets and ships carry one; stars usually do not.
type LocalPosition struct {
	X, Y float64
}

// Radius is the physical radius in meters.
type Radius struct {
	R float64
}

// StarData holds the spectral information used for coloring.
type StarData struct {
	SpectralClass float64
	Temperature   float64 // Kelvin
}

// Name labels an entity that the camera can hook onto.
type Name struct {
	Name string
}
