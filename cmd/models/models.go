// Package models implements the model listing command.
package models

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/pitchnet"
)

// Command creates the models command listing available pitch models.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "models [directory]",
		Short: "List pitch models in a directory",
		Long:  "Scan a directory for TFLite pitch models and report the analysis window size each expects.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "models"
			if len(args) > 0 {
				dir = args[0]
			} else if settings.Model.Path != "" {
				dir = filepath.Dir(settings.Model.Path)
			}
			return listModels(cmd.OutOrStdout(), dir)
		},
	}
}

// listModels prints the discovered models and their chunk sizes.
func listModels(out io.Writer, dir string) error {
	paths, err := pitchnet.DiscoverModels(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(out, "No models found in %s\n", dir)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Model\tChunk Size")
	for _, path := range paths {
		fmt.Fprintf(w, "%s\t%d\n", filepath.Base(path), pitchnet.ChunkSizeFromFilename(path))
	}
	return w.Flush()
}
