package myaudio

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/engine"
	"github.com/tphakala/pitchnet-go/internal/errors"
	"github.com/tphakala/pitchnet-go/internal/observability/metrics"
)

// minFeedBufferSize is the floor for the byte buffer between the audio
// callback and the feeder goroutine.
const minFeedBufferSize = 64 * 1024

// feedChunkBytes is how much PCM the feeder drains per pass.
const feedChunkBytes = 4096

// captureSource holds a resolved capture device.
type captureSource struct {
	Name    string
	ID      string
	Pointer unsafe.Pointer
}

// CaptureManager owns the audio capture pipeline: the malgo device, the
// byte buffer the device callback writes into, the rolling clip buffer and
// the feeder goroutine pushing converted samples into the engine.
type CaptureManager struct {
	settings   *conf.Settings
	eng        *engine.StreamEngine
	metrics    *metrics.MyAudioMetrics
	feedBuffer *ringbuffer.RingBuffer
	clipBuffer *CaptureBuffer

	levelChan   chan AudioLevelData
	restartChan chan struct{}
	quitChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewCaptureManager prepares a capture pipeline feeding the given engine.
// Metrics may be nil.
func NewCaptureManager(settings *conf.Settings, eng *engine.StreamEngine, m *metrics.MyAudioMetrics) *CaptureManager {
	feedBytes := settings.Audio.BufferSeconds * settings.Audio.SampleRate * conf.BitDepth / 8
	if feedBytes < minFeedBufferSize {
		feedBytes = minFeedBufferSize
	}
	fb := ringbuffer.New(feedBytes)
	fb.SetBlocking(false)
	return &CaptureManager{
		settings:    settings,
		eng:         eng,
		metrics:     m,
		feedBuffer:  fb,
		clipBuffer:  NewCaptureBuffer(settings.Audio.CaptureSeconds, settings.Audio.SampleRate, conf.BitDepth/8),
		levelChan:   make(chan AudioLevelData, 10),
		restartChan: make(chan struct{}, 1),
		quitChan:    make(chan struct{}),
	}
}

// AudioLevels returns the channel carrying per-callback audio level updates.
func (cm *CaptureManager) AudioLevels() <-chan AudioLevelData {
	return cm.levelChan
}

// ClipBuffer exposes the rolling clip buffer for export.
func (cm *CaptureManager) ClipBuffer() *CaptureBuffer {
	return cm.clipBuffer
}

// Start opens the capture device and starts the feeder goroutine. It
// restarts the device loop on unexpected device stops until Stop is called.
func (cm *CaptureManager) Start() error {
	cm.wg.Add(1)
	go cm.feedLoop()

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for {
			err := cm.runDevice()
			if err != nil {
				GetLogger().Error("audio capture stopped", "error", err)
			}
			select {
			case <-cm.quitChan:
				return
			case <-time.After(1 * time.Second):
				GetLogger().Info("restarting audio capture")
				cm.recordRestart()
			}
		}
	}()
	return nil
}

// Stop shuts the capture pipeline down and waits for its goroutines. It is
// safe to call more than once.
func (cm *CaptureManager) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.quitChan)
	})
	cm.wg.Wait()
}

func (cm *CaptureManager) runDevice() error {
	settings := cm.settings

	// On Linux prefer ALSA, elsewhere let malgo pick a platform backend.
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	malgoCtx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		if settings.Main.Debug {
			GetLogger().Debug("malgo", "message", strings.TrimSpace(message))
		}
	})
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Context("operation", "init-context").
			Build()
	}
	defer malgoCtx.Uninit() //nolint:errcheck

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = conf.NumChannels
	deviceConfig.SampleRate = uint32(settings.Audio.SampleRate) //nolint:gosec // G115: validated sample rate
	deviceConfig.Alsa.NoMMap = 1

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Context("operation", "list-devices").
			Build()
	}

	source, err := selectCaptureSource(settings, infos)
	if err != nil {
		return err
	}
	deviceConfig.Capture.DeviceID = source.Pointer

	var device *malgo.Device

	onReceiveFrames := func(_, pSamples []byte, framecount uint32) {
		n, _ := cm.feedBuffer.Write(pSamples)
		if n < len(pSamples) {
			cm.recordOverrun()
		}
		cm.clipBuffer.Write(pSamples)
		cm.publishLevel(CalculateAudioLevel(pSamples, source.Name))
	}

	// Restart the device when it stops without a quit signal, e.g. after a
	// USB audio interface reconnect.
	onStopDevice := func() {
		go func() {
			select {
			case <-cm.quitChan:
				return
			case <-time.After(100 * time.Millisecond):
				if err := device.Start(); err != nil {
					GetLogger().Warn("failed to restart audio device", "error", err)
					select {
					case cm.restartChan <- struct{}{}:
					default:
					}
				} else {
					cm.recordRestart()
				}
			}
		}()
	}

	device, err = malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onReceiveFrames,
		Stop: onStopDevice,
	})
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Context("operation", "init-device").
			Context("source", source.Name).
			Build()
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Context("operation", "start-device").
			Context("source", source.Name).
			Build()
	}
	defer device.Stop() //nolint:errcheck

	GetLogger().Info("listening on audio source", "source", source.Name, "id", source.ID)

	select {
	case <-cm.quitChan:
		return nil
	case <-cm.restartChan:
		return errors.Newf("audio device lost").
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Context("source", source.Name).
			Build()
	}
}

// feedLoop drains the feed buffer, converts the PCM to float32 and pushes
// the samples into the engine. It polls rather than blocks so the quit
// signal is honored promptly.
func (cm *CaptureManager) feedLoop() {
	defer cm.wg.Done()

	pcm := make([]byte, feedChunkBytes)
	samples := make([]float32, feedChunkBytes/2)

	for {
		select {
		case <-cm.quitChan:
			return
		default:
		}

		n, err := cm.feedBuffer.Read(pcm)
		if err != nil || n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		got := SamplesFromPCM16(pcm[:n], samples)
		cm.eng.Push(samples[:got])
	}
}

func (cm *CaptureManager) publishLevel(level AudioLevelData) {
	cm.metrics.SetAudioLevel(level.Source, float64(level.Level))
	if level.Clipping {
		cm.metrics.IncAudioClipping(level.Source)
	}
	select {
	case cm.levelChan <- level:
	default:
		// Consumer is behind, drop the oldest update.
		select {
		case <-cm.levelChan:
		default:
		}
		select {
		case cm.levelChan <- level:
		default:
		}
	}
}

func (cm *CaptureManager) recordOverrun() {
	cm.metrics.IncCaptureOverrun(cm.settings.Audio.Source)
}

func (cm *CaptureManager) recordRestart() {
	cm.metrics.IncDeviceRestart(cm.settings.Audio.Source)
}

// selectCaptureSource picks the capture device matching the configured
// source, falling back to the system default when no source is configured.
func selectCaptureSource(settings *conf.Settings, infos []malgo.DeviceInfo) (captureSource, error) {
	want := strings.ToLower(strings.TrimSpace(settings.Audio.Source))

	for i := range infos {
		info := infos[i]
		name := strings.TrimRight(info.Name(), "\x00")
		decodedID, err := hexToASCII(strings.TrimRight(info.ID.String(), "\x00"))
		if err != nil {
			decodedID = info.ID.String()
		}

		if want == "" || want == "default" || want == "sysdefault" {
			if info.IsDefault != 0 || len(infos) == 1 {
				return captureSource{Name: name, ID: decodedID, Pointer: info.ID.Pointer()}, nil
			}
			continue
		}

		if strings.Contains(strings.ToLower(name), want) ||
			strings.Contains(strings.ToLower(decodedID), want) {
			return captureSource{Name: name, ID: decodedID, Pointer: info.ID.Pointer()}, nil
		}
	}

	// Nothing marked default, take the first device.
	if (want == "" || want == "default" || want == "sysdefault") && len(infos) > 0 {
		info := infos[0]
		return captureSource{
			Name:    strings.TrimRight(info.Name(), "\x00"),
			ID:      info.ID.String(),
			Pointer: info.ID.Pointer(),
		}, nil
	}

	return captureSource{}, errors.Newf("no capture device matches source %q", settings.Audio.Source).
		Component("myaudio").
		Category(errors.CategoryAudioSource).
		Build()
}

// hexToASCII decodes a hex encoded device ID into a readable string.
func hexToASCII(hexStr string) (string, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListCaptureSources prints the available capture devices to stdout.
func ListCaptureSources(settings *conf.Settings) error {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Context("operation", "init-context").
			Build()
	}
	defer malgoCtx.Uninit() //nolint:errcheck

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudioSource).
			Context("operation", "list-devices").
			Build()
	}

	fmt.Fprintln(os.Stdout, "Available capture sources:")
	for i := range infos {
		name := strings.TrimRight(infos[i].Name(), "\x00")
		marker := ""
		if infos[i].IsDefault != 0 {
			marker = " (default)"
		}
		fmt.Fprintf(os.Stdout, "  %d: %s%s\n", i, name, marker)
	}
	return nil
}
