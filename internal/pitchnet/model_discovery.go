package pitchnet

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tphakala/pitchnet-go/internal/conf"
	"github.com/tphakala/pitchnet-go/internal/errors"
)

// chunkSizePattern extracts the analysis window length embedded in a model
// filename, e.g. "pesto_1024.tflite" expects 1024-sample windows.
var chunkSizePattern = regexp.MustCompile(`(\d+)\.tflite$`)

// ChunkSizeFromFilename derives the chunk size from the trailing digits of a
// model filename, falling back to the default when the convention is absent.
func ChunkSizeFromFilename(modelPath string) int {
	matches := chunkSizePattern.FindStringSubmatch(filepath.Base(modelPath))
	if len(matches) < 2 {
		GetLogger().Debug("could not extract chunk size from model name, using default",
			"model", filepath.Base(modelPath),
			"default", conf.DefaultChunkSize)
		return conf.DefaultChunkSize
	}
	size, err := strconv.Atoi(matches[1])
	if err != nil || size <= 0 {
		return conf.DefaultChunkSize
	}
	return size
}

// DiscoverModels lists the TFLite model files in a directory, sorted by name.
func DiscoverModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err).
			Component("pitchnet").
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}

	var models []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".tflite") {
			models = append(models, filepath.Join(dir, entry.Name()))
		}
	}
	return models, nil
}
