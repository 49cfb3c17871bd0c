// export.go: WAV clip export from the rolling capture buffer.
package myaudio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/errors"
	"github.com/tphakala/pitchnet-go/internal/observability/metrics"
)

// ExportClip writes the most recent seconds of captured audio from the
// clip buffer to a timestamped WAV file under exportPath and returns the
// file path. Metrics may be nil.
func ExportClip(cb *CaptureBuffer, source, exportPath string, seconds, sampleRate int, m *metrics.MyAudioMetrics) (string, error) {
	pcm := cb.ReadLast(seconds)
	if len(pcm) == 0 {
		err := errors.Newf("no captured audio available for export").
			Component("myaudio").
			Category(errors.CategoryBuffer).
			Build()
		m.RecordClipExport(source, err)
		return "", err
	}

	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		enhanced := errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(exportPath, 0).
			Build()
		m.RecordClipExport(source, enhanced)
		return "", enhanced
	}

	filename := fmt.Sprintf("clip_%s.wav", time.Now().Format("20060102_150405"))
	outPath := filepath.Join(exportPath, filename)

	if err := writeWAV(outPath, pcm, sampleRate); err != nil {
		m.RecordClipExport(source, err)
		return "", err
	}

	m.RecordClipExport(source, nil)
	return outPath, nil
}

// writeWAV encodes 16-bit mono PCM bytes into a WAV file.
func writeWAV(path string, pcm []byte, sampleRate int) error {
	outFile, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer outFile.Close() //nolint:errcheck

	intSamples := make([]int, len(pcm)/2)
	for i := range intSamples {
		intSamples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2])))
	}

	enc := wav.NewEncoder(outFile, sampleRate, conf.BitDepth, conf.NumChannels, 1)
	if err := enc.Write(&audio.IntBuffer{
		Data:   intSamples,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: conf.NumChannels},
	}); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	return enc.Close()
}
