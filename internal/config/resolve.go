package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
)

// appName keys the per-application data directory and the default database
// file name.
const appName = "flatisfy"

// Options carries the CLI-sourced overrides for Resolve. A nil field means
// the corresponding flag was not given and must not override anything.
type Options struct {
	ConfigFile string
	Passes     *int
	MaxEntries *int
	Port       *int
	Host       *string
	DataDir    *string
}

// Resolve builds the effective configuration by layering, in precedence
// order: built-in defaults, the JSON config file named by opts.ConfigFile,
// and the CLI overrides in opts. It then derives the data directory,
// database connection string, and search index path, and validates the
// merged result.
//
// An unreadable or malformed config file is logged and skipped; resolution
// continues with the remaining layers. A configuration that fails
// validation yields (nil, *ValidationError). Resolve never panics and
// performs no filesystem writes.
func Resolve(opts *Options) (*Config, error) {
	if opts == nil {
		opts = &Options{}
	}
	slog.Info("Initializing configuration")

	merged := Default().asMap()

	// The file overlay replaces top-level keys wholesale: a "constraints"
	// block from the file stands on its own rather than being deep-merged
	// with the defaults. Unknown keys are kept and surfaced via
	// Config.Extra.
	if opts.ConfigFile != "" {
		overlay, err := loadOverlay(opts.ConfigFile)
		if err != nil {
			slog.Error("Unable to load configuration file, using defaults",
				"path", opts.ConfigFile, "error", err)
		} else {
			slog.Debug("Loaded configuration file", "path", opts.ConfigFile)
			for key, value := range overlay {
				merged[key] = value
			}
		}
	}

	// CLI overrides apply field-by-field to an enumerated set only; the
	// CLI surface is deliberately narrower than the file overlay.
	if opts.Passes != nil {
		slog.Debug("Overriding number of passes from command line", "passes", *opts.Passes)
		merged["passes"] = *opts.Passes
	}
	if opts.MaxEntries != nil {
		slog.Debug("Overriding maximum number of entries from command line", "max_entries", *opts.MaxEntries)
		merged["max_entries"] = *opts.MaxEntries
	}
	if opts.Port != nil {
		slog.Debug("Overriding web server port from command line", "port", *opts.Port)
		merged["port"] = *opts.Port
	}
	if opts.Host != nil {
		slog.Debug("Overriding web server host from command line", "host", *opts.Host)
		merged["host"] = *opts.Host
	}

	switch {
	case opts.DataDir != nil:
		slog.Debug("Overriding data directory from command line", "data_directory", *opts.DataDir)
		merged["data_directory"] = *opts.DataDir
	case merged["data_directory"] == nil:
		dir := filepath.Join(xdg.DataHome, appName)
		slog.Debug("Using default data directory", "data_directory", dir)
		merged["data_directory"] = dir
	}

	if dir, ok := merged["data_directory"].(string); ok {
		if merged["database"] == nil {
			merged["database"] = "sqlite:///" + filepath.Join(dir, appName+".db")
		}
		if merged["search_index"] == nil {
			merged["search_index"] = filepath.Join(dir, "search_index")
		}
	}

	if err := Validate(merged); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return nil, err
	}

	cfg, err := decodeConfig(merged)
	if err != nil {
		return nil, fmt.Errorf("decoding resolved configuration: %w", err)
	}
	cfg.Extra = extraKeys(merged)

	slog.Info("Configuration fully initialized")
	return cfg, nil
}

// loadOverlay reads and decodes a JSON config file into a generic mapping.
func loadOverlay(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var overlay map[string]any
	if err := json.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return overlay, nil
}

// decodeConfig turns the merged, validated mapping into a typed Config.
func decodeConfig(data map[string]any) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// extraKeys collects the top-level keys that are not part of the schema.
func extraKeys(merged map[string]any) map[string]any {
	known := Default().asMap()
	var extra map[string]any
	for key, value := range merged {
		if _, ok := known[key]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = value
	}
	return extra
}
