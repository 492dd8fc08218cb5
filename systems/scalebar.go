package systems

import (
	"math"
	"strconv"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
)

// ScaleUnit is a rung of the scale bar's unit ladder.
type ScaleUnit int

const (
	UnitMeter ScaleUnit = iota
	UnitKilometer
	UnitMillionKilometer
	UnitLightYear
	UnitMillionLightYear
)

var unitMeters = [...]float64{
	UnitMeter:            1,
	UnitKilometer:        1e3,
	UnitMillionKilometer: 1e9,
	UnitLightYear:        9.46e15,
	UnitMillionLightYear: 9.46e21,
}

var unitNames = [...]string{
	UnitMeter:            "m",
	UnitKilometer:        "km",
	UnitMillionKilometer: "Mkm",
	UnitLightYear:        "ly",
	UnitMillionLightYear: "Mly",
}

// Meters returns the unit length.
func (u ScaleUnit) Meters() float64 { return unitMeters[u] }

func (u ScaleUnit) String() string { return unitNames[u] }

// Scale is the calibrated scale bar: Value() units span Pixels pixels.
type Scale struct {
	Exponent int
	Unit     ScaleUnit
	Pixels   float64
}

// Value returns 10^Exponent.
func (s Scale) Value() float64 {
	return math.Pow(10, float64(s.Exponent))
}

// Label formats the bar length, e.g. "100 ly" or "0.01 m".
func (s Scale) Label() string {
	var num string
	if s.Exponent >= -4 && s.Exponent <= 6 {
		num = strconv.FormatFloat(s.Value(), 'f', -1, 64)
	} else {
		num = "1e" + strconv.Itoa(s.Exponent)
	}
	return num + " " + s.Unit.String()
}

// ComputeScale picks the largest unit shorter than maxFrac of the window
// width and the largest power of ten of it that still fits. The bar is
// then in (0, maxFrac*width] pixels for any positive zoom.
func ComputeScale(zoom float64, width int, maxFrac float64) Scale {
	if zoom <= 0 || width < 1 {
		return Scale{}
	}
	maxPx := maxFrac * float64(width)
	span := maxPx / zoom // meters covered by the longest allowed bar

	unit := UnitMeter
	for u := UnitMillionLightYear; u > UnitMeter; u-- {
		if u.Meters() < span {
			unit = u
			break
		}
	}

	exp := int(math.Floor(math.Log10(span / unit.Meters())))
	px := unit.Meters() * math.Pow(10, float64(exp)) * zoom
	for px > maxPx {
		exp--
		px = unit.Meters() * math.Pow(10, float64(exp)) * zoom
	}
	return Scale{Exponent: exp, Unit: unit, Pixels: px}
}

// DrawScaleBar draws a horizontal bar with end caps centered near the
// bottom of a w×h window into the bound target.
func DrawScaleBar(dev gfx.Device, s Scale, w, h int, cfg config.ScaleBarConfig) {
	if s.Pixels <= 0 {
		return
	}
	c := gfx.RGB3(cfg.Color)
	thick := float32(cfg.Thickness)
	cx := float32(w) / 2
	y := float32(float64(h) - cfg.YOffset)
	half := float32(s.Pixels / 2)
	capH := float32(cfg.CapHeight)

	dev.DrawLine(cx-half, y, cx+half, y, thick, c)
	dev.DrawLine(cx-half, y-capH, cx-half, y, thick, c)
	dev.DrawLine(cx+half, y-capH, cx+half, y, thick, c)
}
