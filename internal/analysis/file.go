package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/engine"
	"github.com/tphakala/pitchnet-go/internal/errors"
	"github.com/tphakala/pitchnet-go/internal/myaudio"
	"github.com/tphakala/pitchnet-go/internal/pitchnet"
)

// FilePrediction is one analysis window result from an audio file.
type FilePrediction struct {
	Start      time.Duration
	Pitch      float64
	Confidence float64
	Amplitude  float64
	Voiced     bool
}

// FileAnalysis runs pitch estimation over a WAV file and writes the results
// in the configured output format.
func FileAnalysis(settings *conf.Settings) error {
	if settings.InputFile == "" {
		return errors.Newf("no input file specified").
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}

	// Validate the input before paying for model construction.
	info, err := myaudio.ReadWAVInfo(settings.InputFile)
	if err != nil {
		return err
	}
	GetLogger().Info("analyzing audio file",
		"file", settings.InputFile,
		"sample_rate", info.SampleRate,
		"channels", info.NumChannels,
		"bit_depth", info.BitDepth,
		"duration_s", float64(info.TotalSamples)/float64(info.SampleRate))

	model, err := pitchnet.New(settings)
	if err != nil {
		return err
	}
	defer model.Close() //nolint:errcheck

	chunkSize := model.ChunkSize()
	confidenceThreshold := settings.Realtime.ConfidenceThreshold
	amplitudeThreshold := settings.Realtime.AmplitudeThreshold

	start := time.Now()
	var predictions []FilePrediction

	sampleRate, err := myaudio.ReadWAVChunks(settings.InputFile, chunkSize, func(chunk []float32) error {
		pitch, confidence, amplitude, err := model.Invoke(chunk)
		if err != nil {
			return errors.New(err).
				Component("analysis").
				Category(errors.CategoryInference).
				FileContext(settings.InputFile, 0).
				Build()
		}

		gated := engine.Gate(pitch, confidence, amplitude, confidenceThreshold, amplitudeThreshold)
		predictions = append(predictions, FilePrediction{
			Pitch:      gated,
			Confidence: confidence,
			Amplitude:  amplitude,
			Voiced:     gated != engine.GatedPitch,
		})
		return nil
	})
	if err != nil {
		return err
	}

	// Window offsets use the file's real sample rate reported by the decoder.
	for i := range predictions {
		predictions[i].Start = time.Duration(i*chunkSize) * time.Second / time.Duration(sampleRate)
	}

	GetLogger().Info("file analysis complete",
		"file", settings.InputFile,
		"windows", len(predictions),
		"sample_rate", sampleRate,
		"elapsed_ms", time.Since(start).Milliseconds())

	return writeResults(settings, predictions)
}

// writeResults writes the predictions to the configured destination.
func writeResults(settings *conf.Settings, predictions []FilePrediction) error {
	var out io.Writer = os.Stdout
	if settings.Output.File != "" {
		f, err := os.Create(settings.Output.File)
		if err != nil {
			return errors.New(err).
				Component("analysis").
				Category(errors.CategoryFileIO).
				FileContext(settings.Output.File, 0).
				Build()
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	switch settings.Output.Format {
	case "csv":
		return writeCSV(out, predictions)
	default:
		return writeTable(out, predictions)
	}
}

// writeCSV writes predictions as comma separated values with a header row.
func writeCSV(out io.Writer, predictions []FilePrediction) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"start_s", "pitch_hz", "confidence", "amplitude", "voiced"}); err != nil {
		return err
	}
	for i := range predictions {
		p := &predictions[i]
		record := []string{
			strconv.FormatFloat(p.Start.Seconds(), 'f', 4, 64),
			strconv.FormatFloat(p.Pitch, 'f', 2, 64),
			strconv.FormatFloat(p.Confidence, 'f', 4, 64),
			strconv.FormatFloat(p.Amplitude, 'f', 4, 64),
			strconv.FormatBool(p.Voiced),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeTable writes predictions as an aligned text table.
func writeTable(out io.Writer, predictions []FilePrediction) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Start\tPitch (Hz)\tConfidence\tAmplitude")
	for i := range predictions {
		p := &predictions[i]
		if !p.Voiced {
			fmt.Fprintf(w, "%.2fs\t-\t%.3f\t%.4f\n", p.Start.Seconds(), p.Confidence, p.Amplitude)
			continue
		}
		fmt.Fprintf(w, "%.2fs\t%.2f\t%.3f\t%.4f\n", p.Start.Seconds(), p.Pitch, p.Confidence, p.Amplitude)
	}
	return w.Flush()
}
