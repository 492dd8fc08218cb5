// Package main tunes the point-cloud pyramid blend weights against a
// full-resolution reference rendered on the CPU device.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/pwng/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func parseZooms(s string) ([]float64, error) {
	var zooms []float64
	for _, f := range strings.Split(s, ",") {
		z, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("zoom %q: %w", f, err)
		}
		zooms = append(zooms, z)
	}
	return zooms, nil
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxEvals := flag.Int("max-evals", 150, "Maximum number of evaluations")
	size := flag.Int("size", 256, "Window side in pixels")
	stars := flag.Int("stars", 50000, "Stars in the synthetic field")
	zoomList := flag.String("zooms", "2e-19,5e-19,1e-18", "Comma-separated point-cloud zooms to score")
	refBlur := flag.Int("ref-blur", 8, "Blur passes on the full-resolution reference")
	outputDir := flag.String("output", "", "Output directory for the log and tuned config (empty = print only)")
	flag.Parse()

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg.Synth.Stars = *stars

	zooms, err := parseZooms(*zoomList)
	if err != nil {
		log.Fatalf("bad -zooms: %v", err)
	}

	params := NewParamVector(baseCfg)
	if params.Dim() == 0 {
		log.Fatal("pyramid has a single level, nothing to tune")
	}

	start := time.Now()
	evaluator, err := NewFitnessEvaluator(params, baseCfg, *size, zooms, *refBlur)
	if err != nil {
		log.Fatalf("failed to prepare references: %v", err)
	}
	fmt.Printf("Field of %d stars and %d references ready in %s\n",
		evaluator.StarCount(), len(zooms), formatDuration(time.Since(start)))

	var logWriter *csv.Writer
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
		logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		defer logFile.Close()
		logWriter = csv.NewWriter(logFile)
		defer logWriter.Flush()

		header := []string{"eval", "mse"}
		for _, spec := range params.Specs {
			header = append(header, spec.Name)
		}
		logWriter.Write(header)
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			clamped := params.Clamp(raw)
			mse, err := evaluator.Evaluate(clamped)
			if err != nil {
				log.Printf("evaluation failed: %v", err)
				return math.Inf(1)
			}
			evalCount++

			// Nelder-Mead is unconstrained; steer it back into the box
			fitness := mse * (1 + params.OutOfBounds(raw))
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			if logWriter != nil {
				row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.8f", mse)}
				for _, v := range clamped {
					row = append(row, fmt.Sprintf("%.6f", v))
				}
				logWriter.Write(row)
				logWriter.Flush()
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: mse=%.6g (best=%.6g) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, mse, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}
	method := &optimize.NelderMead{SimplexSize: 0.2}

	fmt.Printf("Starting Nelder-Mead over %d weights, max_evals=%d, zooms=%v\n",
		params.Dim(), *maxEvals, zooms)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no successful evaluation")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best mse: %.6g\n", bestFitness)

	bestCfg, _ := config.Load(*configPath)
	params.ApplyToConfig(bestCfg, bestParams)

	section, err := yaml.Marshal(struct {
		Pyramid config.PyramidConfig `yaml:"pyramid"`
	}{bestCfg.Pyramid})
	if err != nil {
		log.Fatalf("failed to marshal pyramid: %v", err)
	}
	fmt.Printf("\n%s", section)

	if *outputDir != "" {
		configOutPath := filepath.Join(*outputDir, "best_config.yaml")
		if err := bestCfg.WriteYAML(configOutPath); err != nil {
			log.Printf("failed to write best config: %v", err)
		} else {
			fmt.Printf("\nBest config saved to: %s\n", configOutPath)
		}
	}
}
