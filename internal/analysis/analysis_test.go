package analysis

import (
	"github.com/tphakala/pitchnet-go/internal/conf"
)

// testSettings returns minimal settings for analysis tests.
func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Audio.SampleRate = 48000
	settings.Model.ChunkSize = conf.DefaultChunkSize
	settings.Realtime.QueueSize = 10
	return settings
}
