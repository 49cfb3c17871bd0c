// Package analysis wires the audio capture path, the inference engine and
// the output stages together for the realtime and file analysis modes.
package analysis

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/engine"
	"github.com/tphakala/pitchnet-go/internal/myaudio"
	"github.com/tphakala/pitchnet-go/internal/observability"
	obsmetrics "github.com/tphakala/pitchnet-go/internal/observability/metrics"
	"github.com/tphakala/pitchnet-go/internal/pitchnet"
)

// clipExportCooldown limits how often voiced audio triggers a clip export.
const clipExportCooldown = 30 * time.Second

// RealtimeAnalysis starts the realtime pitch tracker and blocks until a
// termination signal arrives.
func RealtimeAnalysis(settings *conf.Settings) error {
	var metrics *observability.Metrics
	if settings.Realtime.Telemetry.Enabled {
		var err error
		metrics, err = observability.NewMetrics()
		if err != nil {
			return fmt.Errorf("error initializing metrics: %w", err)
		}
	}

	opts := engine.Options{
		Source:              settings.Audio.Source,
		SampleRate:          settings.Audio.SampleRate,
		QueueSize:           settings.Realtime.QueueSize,
		ConfidenceThreshold: settings.Realtime.ConfidenceThreshold,
		AmplitudeThreshold:  settings.Realtime.AmplitudeThreshold,
	}
	if metrics != nil {
		opts.Metrics = metrics.Engine
	}

	eng, err := engine.New(pitchnet.Builder(settings), opts)
	if err != nil {
		return err
	}
	defer eng.Close() //nolint:errcheck

	fmt.Printf("Starting pitch tracker in realtime mode. Confidence threshold: %v, amplitude threshold: %v, chunk size: %d\n",
		settings.Realtime.ConfidenceThreshold,
		settings.Realtime.AmplitudeThreshold,
		eng.ChunkSize())

	var audioMetrics *obsmetrics.MyAudioMetrics
	if metrics != nil {
		audioMetrics = metrics.MyAudio
	}
	capture := myaudio.NewCaptureManager(settings, eng, audioMetrics)
	if err := capture.Start(); err != nil {
		return err
	}
	defer capture.Stop()

	quitChan := make(chan struct{})
	var wg sync.WaitGroup

	if metrics != nil {
		endpoint, err := observability.NewEndpoint(settings, metrics)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quitChan)
	}

	wg.Add(1)
	go consumeResults(settings, eng, capture, &wg)

	wg.Add(1)
	go consumeAudioLevels(settings, capture.AudioLevels(), quitChan, &wg)

	// Wait for a termination signal.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	GetLogger().Info("termination signal received, shutting down")
	close(quitChan)
	capture.Stop()
	if err := eng.Close(); err != nil {
		GetLogger().Error("engine shutdown error", "error", err)
	}
	wg.Wait()
	return nil
}

// consumeResults prints predictions and exports audio clips for voiced
// segments until the engine's results channel closes.
func consumeResults(settings *conf.Settings, eng *engine.StreamEngine, capture *myaudio.CaptureManager, wg *sync.WaitGroup) {
	defer wg.Done()

	var lastExport time.Time
	for prediction := range eng.Results() {
		printPrediction(settings, &prediction)

		if settings.Audio.Export.Enabled &&
			prediction.Pitch != engine.GatedPitch &&
			time.Since(lastExport) >= clipExportCooldown {
			lastExport = time.Now()
			path, err := myaudio.ExportClip(capture.ClipBuffer(),
				settings.Audio.Source,
				settings.Audio.Export.Path,
				settings.Audio.Export.Length,
				settings.Audio.SampleRate,
				nil)
			if err != nil {
				GetLogger().Warn("clip export failed", "error", err)
			} else if settings.Audio.Export.Debug {
				GetLogger().Debug("exported audio clip", "path", path)
			}
		}
	}
}

// clippingWarnInterval limits how often clipping is logged; the capture
// callback reports levels many times per second.
const clippingWarnInterval = 5 * time.Second

// consumeAudioLevels drains the capture path's level updates, warning on
// input clipping and tracing levels in debug mode.
func consumeAudioLevels(settings *conf.Settings, levels <-chan myaudio.AudioLevelData, quitChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	var lastClipWarn time.Time
	for {
		select {
		case <-quitChan:
			return
		case level := <-levels:
			switch {
			case level.Clipping && time.Since(lastClipWarn) >= clippingWarnInterval:
				lastClipWarn = time.Now()
				GetLogger().Warn("audio input is clipping",
					"source", level.Source,
					"level", level.Level)
			case settings.Main.Debug:
				GetLogger().Debug("audio level",
					"source", level.Source,
					"level", level.Level)
			}
		}
	}
}

// printPrediction writes one prediction to stdout.
func printPrediction(settings *conf.Settings, p *engine.Prediction) {
	timestamp := p.StartTime.Format("15:04:05.000")
	if p.Pitch == engine.GatedPitch {
		if settings.Main.Debug {
			fmt.Printf("%s  unvoiced (confidence %.3f, amplitude %.4f)\n",
				timestamp, p.Confidence, p.Amplitude)
		}
		return
	}

	if settings.Realtime.ProcessingTime {
		fmt.Printf("%s  pitch %8.2f Hz  confidence %.3f  amplitude %.4f  (%v)\n",
			timestamp, p.Pitch, p.Confidence, p.Amplitude, p.Elapsed.Round(time.Microsecond))
		return
	}
	fmt.Printf("%s  pitch %8.2f Hz  confidence %.3f  amplitude %.4f\n",
		timestamp, p.Pitch, p.Confidence, p.Amplitude)
}
