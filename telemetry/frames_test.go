package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/pwng/config"
)

func TestFrameTimesSummary(t *testing.T) {
	ft := NewFrameTimes(100)
	if s := ft.Summary(); s.Samples != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}

	for i := 1; i <= 100; i++ {
		ft.Add(time.Duration(i) * time.Millisecond)
	}
	s := ft.Summary()
	if s.Samples != 100 {
		t.Fatalf("expected 100 samples, got %d", s.Samples)
	}
	if math.Abs(s.MeanMS-50.5) > 1e-9 {
		t.Errorf("expected mean 50.5ms, got %f", s.MeanMS)
	}
	if s.P95MS < 94 || s.P95MS > 96 {
		t.Errorf("expected p95 95ms, got %f", s.P95MS)
	}
	if s.MaxMS != 100 {
		t.Errorf("expected max 100ms, got %f", s.MaxMS)
	}
}

func TestFrameTimesWraps(t *testing.T) {
	ft := NewFrameTimes(3)
	for _, ms := range []int{100, 100, 100, 1, 1, 1} {
		ft.Add(time.Duration(ms) * time.Millisecond)
	}
	if s := ft.Summary(); s.MaxMS != 1 || s.Samples != 3 {
		t.Errorf("expected old samples evicted, got %+v", s)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 3; i++ {
		if err := om.WriteFrame(FrameRecord{Frame: i, Zoom: 1e-18, Mode: "points", Path: "pyramid"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{AvgFrameDuration: time.Millisecond}, 3); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "frame,zoom,mode") {
		t.Errorf("expected frames.csv header, got %q", lines[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config snapshot: %v", err)
	}
}

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v %v", om, err)
	}
	if err := om.WriteFrame(FrameRecord{}); err != nil {
		t.Errorf("expected nil manager to discard, got %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("expected nil close to succeed, got %v", err)
	}
}
