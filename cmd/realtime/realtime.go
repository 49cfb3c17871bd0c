// Package realtime implements the realtime analysis command.
package realtime

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/pitchnet-go/internal/analysis"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/myaudio"
)

var listSources bool

// Command creates a new command for realtime pitch analysis.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Analyze audio in realtime mode",
		Long:  "Start estimating pitch from incoming audio data in real time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listSources {
				return myaudio.ListCaptureSources(settings)
			}
			return analysis.RealtimeAnalysis(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Audio.Source, "source", viper.GetString("audio.source"), "Audio capture source (\"sysdefault\", \"USB Audio\", etc.)")
	cmd.Flags().BoolVar(&listSources, "listsources", false, "List available capture sources and exit")
	cmd.Flags().BoolVar(&settings.Audio.Export.Enabled, "export", viper.GetBool("audio.export.enabled"), "Export audio clips of voiced segments")
	cmd.Flags().StringVar(&settings.Audio.Export.Path, "clippath", viper.GetString("audio.export.path"), "Path to save audio clips")
	cmd.Flags().BoolVar(&settings.Realtime.ProcessingTime, "processingtime", viper.GetBool("realtime.processingtime"), "Report processing time for each prediction")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Realtime.Telemetry.Listen, "listen", viper.GetString("realtime.telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
