package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for each configuration parameter.
func setDefaultConfig() {
	viper.SetDefault("main.name", "PitchNet-Go")
	viper.SetDefault("main.debug", false)

	viper.SetDefault("model.path", "")
	viper.SetDefault("model.chunksize", 0)
	viper.SetDefault("model.usexnnpack", true)
	viper.SetDefault("model.threads", 0)

	viper.SetDefault("audio.source", "sysdefault")
	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.bufferseconds", 2)
	viper.SetDefault("audio.captureseconds", 30)
	viper.SetDefault("audio.export.enabled", false)
	viper.SetDefault("audio.export.debug", false)
	viper.SetDefault("audio.export.path", "clips/")
	viper.SetDefault("audio.export.length", 5)

	viper.SetDefault("realtime.confidencethreshold", 0.0)
	viper.SetDefault("realtime.amplitudethreshold", 0.0)
	viper.SetDefault("realtime.queuesize", 100)
	viper.SetDefault("realtime.processingtime", false)
	viper.SetDefault("realtime.telemetry.enabled", false)
	viper.SetDefault("realtime.telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.file", "")
}
