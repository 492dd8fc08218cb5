package ingest

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/pwng/components"
	"github.com/pthm-cable/pwng/config"
)

const (
	// Planetary system IDs live above every generated star ID.
	systemBaseID uint64 = 1 << 62

	bulgeShare  = 0.12
	armPitch    = 0.22 // tan of the spiral pitch angle
	armInnerFac = 0.05 // arm start radius as fraction of extent

	orbitInterval = 50 * time.Millisecond
	orbitDays     = 1.0 // simulated days per orbit tick
)

// Planet is a body orbiting the named system star.
type Planet struct {
	Name   string
	Orbit  float64 // meters
	Radius float64 // meters
	Period float64 // days
}

// SolarSystem is the planetary system placed in the synthetic galaxy.
var SolarSystem = []Planet{
	{"Mercury", 5.79e10, 2.44e6, 88},
	{"Venus", 1.082e11, 6.05e6, 224.7},
	{"Earth", 1.496e11, 6.371e6, 365.25},
	{"Mars", 2.279e11, 3.39e6, 687},
	{"Jupiter", 7.785e11, 6.99e7, 4333},
}

// Source generates a synthetic spiral galaxy and feeds it into a Queue,
// standing in for a network feed.
type Source struct {
	cfg     config.SynthConfig
	q       *Queue
	logger  *slog.Logger
	workers int

	sun components.SystemPosition
	day float64
}

// NewSource creates a source. logger may be nil.
func NewSource(cfg config.SynthConfig, q *Queue, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		cfg:     cfg,
		q:       q,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
		sun:     components.SystemPosition{X: 0.3 * cfg.Extent},
	}
}

// Run loads the galaxy, then animates the planets until ctx is done.
func (s *Source) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	return s.Orbit(ctx, orbitInterval)
}

// Load pushes every star, the planetary system and a final BulkDone.
// Stars are generated in parallel chunks; each chunk draws from its own
// stream so the galaxy depends only on the seed.
func (s *Source) Load(ctx context.Context) error {
	start := time.Now()
	batch := max(s.cfg.BatchSize, 1)
	chunks := (s.cfg.Stars + batch - 1) / batch

	work := make(chan int)
	var wg sync.WaitGroup
	for range min(s.workers, max(chunks, 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				n := min(batch, s.cfg.Stars-c*batch)
				s.q.Push(GenerateChunk(s.cfg, c, uint64(c*batch), n)...)
			}
		}()
	}

	var err error
dispatch:
	for c := 0; c < chunks; c++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case work <- c:
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		}
	}
	close(work)
	wg.Wait()
	if err != nil {
		return err
	}

	s.q.Push(s.systemChanges()...)
	s.q.Push(BulkDone())
	s.logger.Info("synthetic galaxy loaded",
		"stars", s.cfg.Stars,
		"chunks", chunks,
		"planets", len(SolarSystem),
		"duration", time.Since(start),
	)
	return nil
}

// Orbit advances the planets every interval until ctx is done.
func (s *Source) Orbit(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step advances the planets by one tick.
func (s *Source) Step() {
	s.day += orbitDays
	changes := make([]Change, len(SolarSystem))
	for i, p := range SolarSystem {
		changes[i] = SetLocalPosition(planetID(i), orbitPosition(p, s.day))
	}
	s.q.Push(changes...)
}

func (s *Source) systemChanges() []Change {
	changes := []Change{
		AddStar(systemBaseID, s.sun, 6.957e8, components.StarData{SpectralClass: SpectralClass(5772), Temperature: 5772}),
		SetName(systemBaseID, "Sol"),
	}
	for i, p := range SolarSystem {
		id := planetID(i)
		changes = append(changes,
			AddObject(id, s.sun, p.Radius),
			SetLocalPosition(id, orbitPosition(p, s.day)),
			SetName(id, p.Name),
		)
	}
	return changes
}

func planetID(i int) uint64 { return systemBaseID + 1 + uint64(i) }

func orbitPosition(p Planet, day float64) components.LocalPosition {
	a := 2 * math.Pi * day / p.Period
	return components.LocalPosition{X: p.Orbit * math.Cos(a), Y: p.Orbit * math.Sin(a)}
}

// GenerateChunk creates n stars with IDs firstID+1.. from chunk's own
// random stream. A share of stars forms a central bulge; the rest follow
// logarithmic spiral arms with normal scatter.
func GenerateChunk(cfg config.SynthConfig, chunk int, firstID uint64, n int) []Change {
	src := rand.NewPCG(cfg.Seed, uint64(chunk))
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	scatter := distuv.Normal{Mu: 0, Sigma: cfg.Spread * cfg.Extent, Src: src}
	bulge := distuv.Normal{Mu: 0, Sigma: 0.08 * cfg.Extent, Src: src}
	disk := distuv.Exponential{Rate: 3 / cfg.Extent, Src: src}
	temp := distuv.LogNormal{Mu: math.Log(5000), Sigma: 0.45, Src: src}
	radius := distuv.LogNormal{Mu: math.Log(7e8), Sigma: 0.8, Src: src}

	arms := max(cfg.Arms, 1)
	inner := armInnerFac * cfg.Extent
	changes := make([]Change, n)
	for i := range changes {
		var pos components.SystemPosition
		if u.Rand() < bulgeShare {
			pos = components.SystemPosition{X: bulge.Rand(), Y: bulge.Rand()}
		} else {
			r := math.Min(inner+disk.Rand(), cfg.Extent)
			arm := float64(int(u.Rand()*float64(arms)) % arms)
			theta := 2*math.Pi*arm/float64(arms) + math.Log(r/inner)/armPitch
			pos = components.SystemPosition{
				X: r*math.Cos(theta) + scatter.Rand(),
				Y: r*math.Sin(theta) + scatter.Rand(),
			}
		}
		t := math.Min(math.Max(temp.Rand(), 2000), 47000)
		star := components.StarData{SpectralClass: SpectralClass(t), Temperature: t}
		changes[i] = AddStar(firstID+uint64(i)+1, pos, radius.Rand(), star)
	}
	return changes
}

// spectral class lower temperature bounds, O to M
var classBounds = [...]float64{30000, 10000, 7500, 6000, 5200, 3700}

// SpectralClass maps a temperature to a class index (0 = O .. 6 = M).
func SpectralClass(t float64) float64 {
	for i, b := range classBounds {
		if t >= b {
			return float64(i)
		}
	}
	return float64(len(classBounds))
}
