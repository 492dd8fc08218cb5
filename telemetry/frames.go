package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame     int64   `csv:"frame"`
	Zoom      float64 `csv:"zoom"`
	Mode      string  `csv:"mode"`
	Path      string  `csv:"path"`
	Visible   int     `csv:"visible"`
	ResFactor float64 `csv:"res_factor"`
	Levels    int     `csv:"levels"`
	RenderUS  int64   `csv:"render_us"`
}

// FrameTimes keeps a rolling window of frame durations for summary statistics.
type FrameTimes struct {
	window []float64
	next   int
	full   bool
}

// NewFrameTimes creates a window of size samples.
func NewFrameTimes(size int) *FrameTimes {
	if size < 1 {
		size = 60
	}
	return &FrameTimes{window: make([]float64, size)}
}

// Add records one frame duration.
func (f *FrameTimes) Add(d time.Duration) {
	f.window[f.next] = float64(d) / float64(time.Millisecond)
	f.next++
	if f.next == len(f.window) {
		f.next = 0
		f.full = true
	}
}

// Len returns the number of samples in the window.
func (f *FrameTimes) Len() int {
	if f.full {
		return len(f.window)
	}
	return f.next
}

// FrameSummary summarizes the window in milliseconds.
type FrameSummary struct {
	Samples int
	MeanMS  float64
	StdMS   float64
	P95MS   float64
	MaxMS   float64
}

// Summary computes mean, standard deviation and the 95th percentile.
func (f *FrameTimes) Summary() FrameSummary {
	n := f.Len()
	if n == 0 {
		return FrameSummary{}
	}
	xs := make([]float64, n)
	copy(xs, f.window[:n])
	sort.Float64s(xs)

	s := FrameSummary{Samples: n, MaxMS: xs[n-1]}
	if n > 1 {
		s.MeanMS, s.StdMS = stat.MeanStdDev(xs, nil)
	} else {
		s.MeanMS = xs[0]
	}
	s.P95MS = stat.Quantile(0.95, stat.Empirical, xs, nil)
	return s
}

// LogValue implements slog.LogValuer.
func (s FrameSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Float64("mean_ms", s.MeanMS),
		slog.Float64("std_ms", s.StdMS),
		slog.Float64("p95_ms", s.P95MS),
		slog.Float64("max_ms", s.MaxMS),
	)
}
