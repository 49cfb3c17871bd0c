// config.go: settings struct and functions to load and persist application configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"github.com/tphakala/pitchnet-go/internal/errors"
	"gopkg.in/yaml.v3"
)

// MainSettings contains top-level application settings.
type MainSettings struct {
	Name  string // name of this node, used for result labeling
	Debug bool   // true to enable debug logging
}

// ModelSettings contains settings for the pitch model backend.
type ModelSettings struct {
	Path       string // path to the TFLite model file
	ChunkSize  int    // analysis window length in samples, 0 = derive from model filename
	UseXNNPACK bool   // true to enable XNNPACK delegate
	Threads    int    // number of interpreter threads, 0 = automatic
}

// ExportSettings contains settings for audio clip export.
type ExportSettings struct {
	Enabled bool   // export audio clips of voiced segments
	Debug   bool   // true to enable export debug logging
	Path    string // path to clip export directory
	Length  int    // exported clip length in seconds
}

// AudioSettings contains settings for audio capture.
type AudioSettings struct {
	Source         string         // audio capture source device name
	SampleRate     int            // capture sample rate in Hz
	BufferSeconds  int            // capture-side byte buffer length in seconds
	CaptureSeconds int            // rolling clip buffer length in seconds
	Export         ExportSettings // clip export settings
}

// TelemetrySettings contains settings for the Prometheus telemetry endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable the telemetry endpoint
	Listen  string // listen address and port
}

// RealtimeSettings contains settings for realtime analysis.
type RealtimeSettings struct {
	ConfidenceThreshold float64           // minimum confidence for pitch output, 0 disables gating
	AmplitudeThreshold  float64           // minimum amplitude for pitch output, 0 disables gating
	QueueSize           int               // result queue buffer size
	ProcessingTime      bool              // report processing time per prediction
	Telemetry           TelemetrySettings // telemetry endpoint settings
}

// OutputSettings contains settings for file analysis output.
type OutputSettings struct {
	Format string // output format, "table" or "csv"
	File   string // output file path, empty for stdout
}

// Settings is the top-level configuration for the application.
type Settings struct {
	Main     MainSettings
	Model    ModelSettings
	Audio    AudioSettings
	Realtime RealtimeSettings
	Output   OutputSettings

	InputFile string `yaml:"-"` // runtime value, set by the file command
}

var (
	settingsMutex    sync.RWMutex
	settingsInstance *Settings
	once             sync.Once
)

// Load reads the configuration into a new Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets config name, paths and defaults, then reads the config file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the default configuration to the first config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	defaults := viper.AllSettings()
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", configPath).
			Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", configPath).
			Build()
	}

	return viper.ReadInConfig()
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the platform-specific configuration directories
// in search order: XDG/user config dir first, then the working directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user config directory: %w", err)
	}
	return []string{
		filepath.Join(configDir, "pitchnet-go"),
		".",
	}, nil
}
