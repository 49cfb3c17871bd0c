package analysis

import (
	"sync"
	"testing"
	"time"

	"github.com/tphakala/pitchnet-go/internal/myaudio"
)

func TestConsumeAudioLevelsDrainsAndStopsOnQuit(t *testing.T) {
	t.Parallel()

	levels := make(chan myaudio.AudioLevelData, 4)
	quitChan := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go consumeAudioLevels(testSettings(), levels, quitChan, &wg)

	// Updates are consumed, clipping included, without blocking the sender.
	for range 4 {
		levels <- myaudio.AudioLevelData{Level: 97, Clipping: true, Source: "mic"}
	}

	close(quitChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("audio level consumer did not stop on quit")
	}
}
