// Package config provides configuration loading and access for the galaxy renderer.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Render    RenderConfig    `yaml:"render"`
	Stars     StarsConfig     `yaml:"stars"`
	Pyramid   PyramidConfig   `yaml:"pyramid"`
	Temporal  TemporalConfig  `yaml:"temporal"`
	ScaleBar  ScaleBarConfig  `yaml:"scale_bar"`
	Palette   PaletteConfig   `yaml:"palette"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Synth     SynthConfig     `yaml:"synth"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// CameraConfig holds zoom limits and easing.
// Zoom is pixels per meter.
type CameraConfig struct {
	ZoomMin         float64 `yaml:"zoom_min"`
	ZoomMax         float64 `yaml:"zoom_max"`
	ZoomDefault     float64 `yaml:"zoom_default"`
	ZoomSteps       int     `yaml:"zoom_steps"`        // Frames per eased zoom request
	WheelFactor     float64 `yaml:"wheel_factor"`      // Target multiplier per wheel notch
	WheelFactorSlow float64 `yaml:"wheel_factor_slow"` // Same, with ctrl held
}

// RenderConfig holds render-path selection and target limits.
type RenderConfig struct {
	TextureSizeMax     int        `yaml:"texture_size_max"`     // Ceiling for any render target side
	ResFactor          float64    `yaml:"res_factor"`           // Direct-path supersampling factor
	GalaxyZoomDecimals float64    `yaml:"galaxy_zoom_decimals"` // Feeds the derived point-cloud threshold
	GalaxyZoom         float64    `yaml:"galaxy_zoom"`          // Explicit point-cloud threshold (0 = derive)
	DirectZoom         float64    `yaml:"direct_zoom"`          // Zoom at which the direct path takes over (0 = galaxy_zoom)
	PointSize          float64    `yaml:"point_size"`           // Point size in window pixels
	ClearColor         [3]float64 `yaml:"clear_color"`
	DebugInsets        bool       `yaml:"debug_insets"`
	InsetFraction      float64    `yaml:"inset_fraction"` // Inset width as fraction of window width
}

// CircleTier maps a pixel radius band to a tessellation segment count.
// MaxRadius 0 means unbounded.
type CircleTier struct {
	MaxRadius float64 `yaml:"max_radius"`
	Segments  int     `yaml:"segments"`
}

// StarsConfig holds star appearance parameters.
type StarsConfig struct {
	DisplaySizeMin     float64      `yaml:"display_size_min"`
	DisplayScaleFactor float64      `yaml:"display_scale_factor"`
	TemperatureMin     float64      `yaml:"temperature_min"`
	TemperatureRange   float64      `yaml:"temperature_range"`
	FallbackColor      [3]float64   `yaml:"fallback_color"`
	CircleTiers        []CircleTier `yaml:"circle_tiers"`
}

// PyramidLevel is one sub-resolution level of the point-cloud pyramid.
type PyramidLevel struct {
	Fraction float64 `yaml:"fraction"` // Side length relative to the window
	Weight   float64 `yaml:"weight"`   // Blend weight of the coarser result when combining
}

// PyramidConfig holds the resolution pyramid ladder.
type PyramidConfig struct {
	Levels         []PyramidLevel `yaml:"levels"`
	BlurIterations int            `yaml:"blur_iterations"`
	MinLevelSize   int            `yaml:"min_level_size"` // Smallest useful level side in pixels
}

// TemporalConfig holds temporal smoothing parameters.
type TemporalConfig struct {
	Weight      float64 `yaml:"weight"`       // History weight far from the path switch
	FadeDecades float64 `yaml:"fade_decades"` // Zoom decades below the switch over which weight fades to 0
}

// ScaleBarConfig holds scale bar layout.
type ScaleBarConfig struct {
	MaxWidthFraction float64    `yaml:"max_width_fraction"`
	YOffset          float64    `yaml:"y_offset"`
	CapHeight        float64    `yaml:"cap_height"`
	Thickness        float64    `yaml:"thickness"`
	Color            [3]float64 `yaml:"color"`
}

// PaletteSupport is a fixed color at a normalized palette position.
type PaletteSupport struct {
	Pos   float64    `yaml:"pos"`
	Color [3]float64 `yaml:"color"`
}

// PaletteConfig holds the star temperature palette.
type PaletteConfig struct {
	Size    int              `yaml:"size"`
	First   [3]float64       `yaml:"first"`
	Last    [3]float64       `yaml:"last"`
	Support []PaletteSupport `yaml:"support"`
}

// TelemetryConfig holds performance collection parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames in the rolling perf window
	LogInterval int `yaml:"log_interval"` // Frames between perf log lines (0 = off)
}

// SynthConfig holds the synthetic star source parameters.
type SynthConfig struct {
	Stars     int     `yaml:"stars"`
	Seed      uint64  `yaml:"seed"`
	Extent    float64 `yaml:"extent"` // Galaxy radius in meters
	Arms      int     `yaml:"arms"`
	Spread    float64 `yaml:"spread"` // Arm scatter as fraction of extent
	BatchSize int     `yaml:"batch_size"`
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	GalaxyZoom float64 // Below this zoom stars render as a point cloud
	DirectZoom float64 // At or above this zoom the direct supersampled path runs
}

// Load reads configuration from a YAML file, using embedded defaults for missing values.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded defaults. It panics if they do not parse,
// which can only happen on a broken build.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Camera.ZoomMin <= 0 || c.Camera.ZoomMin >= c.Camera.ZoomMax {
		return fmt.Errorf("camera: zoom_min %g must be positive and below zoom_max %g", c.Camera.ZoomMin, c.Camera.ZoomMax)
	}
	if c.Camera.ZoomSteps < 1 {
		return fmt.Errorf("camera: zoom_steps must be at least 1, got %d", c.Camera.ZoomSteps)
	}
	if c.Render.TextureSizeMax < 1 {
		return fmt.Errorf("render: texture_size_max must be positive, got %d", c.Render.TextureSizeMax)
	}
	if c.Render.ResFactor <= 0 {
		return fmt.Errorf("render: res_factor must be positive, got %g", c.Render.ResFactor)
	}
	if len(c.Pyramid.Levels) == 0 {
		return fmt.Errorf("pyramid: at least one level is required")
	}
	prev := math.Inf(1)
	for i, l := range c.Pyramid.Levels {
		if l.Fraction <= 0 || l.Fraction > 1 || l.Fraction >= prev {
			return fmt.Errorf("pyramid: level %d fraction %g must be in (0,1] and decreasing", i, l.Fraction)
		}
		if l.Weight < 0 || l.Weight > 1 {
			return fmt.Errorf("pyramid: level %d weight %g must be in [0,1]", i, l.Weight)
		}
		prev = l.Fraction
	}
	if c.Temporal.Weight < 0 || c.Temporal.Weight >= 1 {
		return fmt.Errorf("temporal: weight %g must be in [0,1)", c.Temporal.Weight)
	}
	if len(c.Stars.CircleTiers) == 0 {
		return fmt.Errorf("stars: at least one circle tier is required")
	}
	if c.Palette.Size < 2 {
		return fmt.Errorf("palette: size must be at least 2, got %d", c.Palette.Size)
	}
	if c.ScaleBar.MaxWidthFraction <= 0 || c.ScaleBar.MaxWidthFraction > 1 {
		return fmt.Errorf("scale_bar: max_width_fraction %g must be in (0,1]", c.ScaleBar.MaxWidthFraction)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GalaxyZoom = c.Render.GalaxyZoom
	if c.Derived.GalaxyZoom == 0 {
		c.Derived.GalaxyZoom = GalaxyZoomFor(c.Camera.ZoomDefault, c.Render.GalaxyZoomDecimals, c.Render.TextureSizeMax)
	}
	c.Derived.DirectZoom = c.Render.DirectZoom
	if c.Derived.DirectZoom < c.Derived.GalaxyZoom {
		c.Derived.DirectZoom = c.Derived.GalaxyZoom
	}
}

// GalaxyZoomFor derives the point-cloud threshold from the texture-size ceiling.
// Smaller ceilings keep the point cloud active for more decades of zoom.
func GalaxyZoomFor(zoomDefault, decimals float64, ceiling int) float64 {
	d := math.Floor(decimals - math.Log10(float64(ceiling)))
	return zoomDefault * math.Pow(10, d)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
