// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/pitchnet-go/cmd/benchmark"
	"github.com/tphakala/pitchnet-go/cmd/file"
	"github.com/tphakala/pitchnet-go/cmd/models"
	"github.com/tphakala/pitchnet-go/cmd/realtime"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pitchnet",
		Short: "PitchNet-Go CLI",
		Long:  "Realtime pitch, confidence and amplitude estimation from audio input.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		realtime.Command(settings),
		file.Command(settings),
		models.Command(settings),
		benchmark.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags may have changed the debug setting after the initial load.
		logging.Init(settings.Main.Debug)
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Main.Debug, "debug", "d", viper.GetBool("main.debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.Model.Path, "model", "m", viper.GetString("model.path"), "Path to TFLite pitch model file")
	rootCmd.PersistentFlags().IntVar(&settings.Model.ChunkSize, "chunksize", viper.GetInt("model.chunksize"), "Analysis window length in samples (0 = derive from model filename)")
	rootCmd.PersistentFlags().IntVar(&settings.Model.Threads, "threads", viper.GetInt("model.threads"), "Number of interpreter threads (0 = automatic)")
	rootCmd.PersistentFlags().BoolVar(&settings.Model.UseXNNPACK, "xnnpack", viper.GetBool("model.usexnnpack"), "Use XNNPACK delegate for inference")
	rootCmd.PersistentFlags().Float64VarP(&settings.Realtime.ConfidenceThreshold, "threshold", "t", viper.GetFloat64("realtime.confidencethreshold"), "Confidence threshold for pitch output, 0 disables gating")
	rootCmd.PersistentFlags().Float64VarP(&settings.Realtime.AmplitudeThreshold, "amplitude", "a", viper.GetFloat64("realtime.amplitudethreshold"), "Amplitude threshold for pitch output, 0 disables gating")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
