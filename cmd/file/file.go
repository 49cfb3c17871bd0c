// Package file implements the offline file analysis command.
package file

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/pitchnet-go/internal/analysis"
	"github.com/tphakala/pitchnet-go/internal/conf"
)

// Command creates a new file command for analyzing a single audio file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.wav]",
		Short: "Analyze an audio file",
		Long:  "Estimate pitch over the analysis windows of a WAV file and write the results as a table or CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.InputFile = args[0]
			return analysis.FileAnalysis(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the file command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.Output.Format, "format", "f", viper.GetString("output.format"), "Output format, \"table\" or \"csv\"")
	cmd.Flags().StringVarP(&settings.Output.File, "output", "o", viper.GetString("output.file"), "Output file path, empty for stdout")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
