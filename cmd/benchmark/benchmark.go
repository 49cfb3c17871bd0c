// Package benchmark implements the inference benchmark command.
package benchmark

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/pitchnet"
)

var iterations int

// Command creates the benchmark command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run pitch model inference benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 || iterations > 100000 {
				return fmt.Errorf("iterations must be between 1 and 100000, got %d", iterations)
			}
			return runBenchmark(settings, iterations)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 200, "number of inference iterations")

	return cmd
}

type benchmarkResults struct {
	totalInferences int
	avgTime         float64 // milliseconds
	minTime         float64
	maxTime         float64
}

// runBenchmark measures inference latency with and without the XNNPACK
// delegate and prints a comparison.
func runBenchmark(settings *conf.Settings, iterations int) error {
	var xnnpackResults, standardResults benchmarkResults

	fmt.Println("Testing with XNNPACK delegate:")
	settings.Model.UseXNNPACK = true
	if err := runInferenceBenchmark(settings, &xnnpackResults, iterations); err != nil {
		fmt.Printf("XNNPACK benchmark failed: %v\n", err)
	}

	fmt.Println("\nTesting standard CPU inference:")
	settings.Model.UseXNNPACK = false
	if err := runInferenceBenchmark(settings, &standardResults, iterations); err != nil {
		return fmt.Errorf("standard CPU inference benchmark failed: %w", err)
	}

	fmt.Printf("\nResults:\n")
	fmt.Printf("Method         Avg Time      Min Time      Max Time\n")
	fmt.Printf("-------------  ------------  ------------  ------------\n")
	printResults("Standard", &standardResults)
	printResults("XNNPACK", &xnnpackResults)

	if xnnpackResults.totalInferences > 0 && standardResults.totalInferences > 0 &&
		standardResults.avgTime > 0 {
		improvement := (standardResults.avgTime - xnnpackResults.avgTime) /
			standardResults.avgTime * 100
		fmt.Printf("\nSpeed improvement with XNNPACK: %.1f%%\n", improvement)
	}

	return nil
}

func printResults(method string, r *benchmarkResults) {
	if r.totalInferences == 0 {
		fmt.Printf("%-13s  failed\n", method)
		return
	}
	fmt.Printf("%-13s  %8.2f ms   %8.2f ms   %8.2f ms\n",
		method, r.avgTime, r.minTime, r.maxTime)
}

// runInferenceBenchmark runs repeated inference on a synthetic sine chunk
// and collects timing statistics.
func runInferenceBenchmark(settings *conf.Settings, results *benchmarkResults, iterations int) error {
	model, err := pitchnet.New(settings)
	if err != nil {
		return err
	}
	defer model.Close() //nolint:errcheck

	chunkSize := model.ChunkSize()
	chunk := make([]float32, chunkSize)
	for i := range chunk {
		chunk[i] = float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/float64(settings.Audio.SampleRate)))
	}

	// Warm up so delegate initialization does not skew the numbers.
	for range 5 {
		if _, _, _, err := model.Invoke(chunk); err != nil {
			return err
		}
	}

	var total time.Duration
	results.minTime = math.MaxFloat64
	for range iterations {
		start := time.Now()
		if _, _, _, err := model.Invoke(chunk); err != nil {
			return err
		}
		elapsed := time.Since(start)
		total += elapsed

		ms := float64(elapsed.Microseconds()) / 1000.0
		if ms < results.minTime {
			results.minTime = ms
		}
		if ms > results.maxTime {
			results.maxTime = ms
		}
	}

	results.totalInferences = iterations
	results.avgTime = float64(total.Microseconds()) / 1000.0 / float64(iterations)

	fmt.Printf("  %d inferences, avg %.2f ms\n", iterations, results.avgTime)
	return nil
}
