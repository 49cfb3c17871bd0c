package myaudio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/pitchnet-go/internal/conf"
)

func newTestCaptureManager() *CaptureManager {
	settings := &conf.Settings{}
	settings.Audio.Source = "test"
	settings.Audio.SampleRate = 48000
	settings.Audio.BufferSeconds = 1
	settings.Audio.CaptureSeconds = 1
	return NewCaptureManager(settings, nil, nil)
}

func TestAudioLevelUpdatesReachConsumer(t *testing.T) {
	t.Parallel()

	cm := newTestCaptureManager()
	cm.publishLevel(AudioLevelData{Level: 42, Source: "mic"})

	select {
	case got := <-cm.AudioLevels():
		assert.Equal(t, 42, got.Level)
		assert.Equal(t, "mic", got.Source)
	case <-time.After(time.Second):
		t.Fatal("level update not delivered")
	}
}

func TestPublishLevelDropsOldestWhenConsumerBehind(t *testing.T) {
	t.Parallel()

	cm := newTestCaptureManager()
	for i := range 12 {
		cm.publishLevel(AudioLevelData{Level: i, Source: "mic"})
	}

	// The channel holds the newest updates; the oldest were discarded.
	first := <-cm.AudioLevels()
	assert.Equal(t, 2, first.Level)

	last := first
	for len(cm.AudioLevels()) > 0 {
		last = <-cm.AudioLevels()
	}
	assert.Equal(t, 11, last.Level)
}
