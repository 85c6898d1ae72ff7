package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileOverlay returns a config file payload with a complete, valid
// constraints block. The file overlay replaces top-level keys wholesale, so
// a partial constraints block would fail validation by design.
func fileOverlay(extra map[string]any) map[string]any {
	overlay := map[string]any{
		"constraints": map[string]any{
			"type":         "RENT",
			"house_types":  []string{"APART"},
			"postal_codes": []string{"75014"},
			"area":         []any{nil, nil},
			"cost":         []any{500, 1500},
			"rooms":        []any{nil, nil},
			"bedrooms":     []any{nil, nil},
			"time_to":      map[string]any{},
		},
	}
	for key, value := range extra {
		overlay[key] = value
	}
	return overlay
}

func writeConfigFile(t *testing.T, overlay map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	data, err := json.Marshal(overlay)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestResolvePrecedence(t *testing.T) {
	t.Run("CLI beats file beats defaults", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(map[string]any{"port": 9000}))

		cfg, err := Resolve(&Options{ConfigFile: path, Port: ptr(9999)})
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Port)
	})

	t.Run("file beats defaults", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(map[string]any{"port": 9000}))

		cfg, err := Resolve(&Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
	})

	t.Run("defaults when neither overrides", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(nil))

		cfg, err := Resolve(&Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
	})
}

func TestResolveCLIOverrides(t *testing.T) {
	path := writeConfigFile(t, fileOverlay(map[string]any{
		"passes": 2,
		"host":   "192.168.1.10",
	}))

	cfg, err := Resolve(&Options{
		ConfigFile: path,
		Passes:     ptr(0), // zero is a real value, not "absent"
		MaxEntries: ptr(42),
		Host:       ptr("0.0.0.0"),
		DataDir:    ptr("/srv/flatisfy"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Passes)
	require.NotNil(t, cfg.MaxEntries)
	assert.Equal(t, 42, *cfg.MaxEntries)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	require.NotNil(t, cfg.DataDirectory)
	assert.Equal(t, "/srv/flatisfy", *cfg.DataDirectory)
}

func TestResolveDerivedPaths(t *testing.T) {
	t.Run("derived from data_directory", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(map[string]any{
			"data_directory": "/srv/flatisfy",
		}))

		cfg, err := Resolve(&Options{ConfigFile: path})
		require.NoError(t, err)

		require.NotNil(t, cfg.Database)
		assert.Equal(t, "sqlite:///"+filepath.Join("/srv/flatisfy", "flatisfy.db"), *cfg.Database)
		require.NotNil(t, cfg.SearchIndex)
		assert.Equal(t, filepath.Join("/srv/flatisfy", "search_index"), *cfg.SearchIndex)
	})

	t.Run("explicit values win over derivation", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(map[string]any{
			"data_directory": "/srv/flatisfy",
			"database":       "postgresql://localhost/flats",
			"search_index":   "/var/index",
		}))

		cfg, err := Resolve(&Options{ConfigFile: path})
		require.NoError(t, err)

		assert.Equal(t, "postgresql://localhost/flats", *cfg.Database)
		assert.Equal(t, "/var/index", *cfg.SearchIndex)
	})

	t.Run("data directory defaults to the platform location", func(t *testing.T) {
		path := writeConfigFile(t, fileOverlay(nil))

		cfg, err := Resolve(&Options{ConfigFile: path})
		require.NoError(t, err)

		wantDir := filepath.Join(xdg.DataHome, "flatisfy")
		require.NotNil(t, cfg.DataDirectory)
		assert.Equal(t, wantDir, *cfg.DataDirectory)
		assert.Equal(t, "sqlite:///"+filepath.Join(wantDir, "flatisfy.db"), *cfg.Database)
		assert.Equal(t, filepath.Join(wantDir, "search_index"), *cfg.SearchIndex)
	})
}

func TestResolveMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 90`), 0o644))

	// A broken file is skipped, so resolution behaves exactly as if no file
	// had been given. With nothing filling in the constraints, both end in
	// the same validation failure, not a load error.
	withFile, errWithFile := Resolve(&Options{ConfigFile: path})
	without, errWithout := Resolve(&Options{})

	assert.Nil(t, withFile)
	assert.Nil(t, without)
	require.Error(t, errWithFile)
	assert.Equal(t, errWithout, errWithFile)

	var verr *ValidationError
	require.ErrorAs(t, errWithFile, &verr)
	assert.Equal(t, "constraints.type", verr.FieldPath)
}

func TestResolveMissingFile(t *testing.T) {
	path := writeConfigFile(t, fileOverlay(map[string]any{"port": 9000}))

	// CLI overrides still apply when the file cannot be read.
	_, err := Resolve(&Options{ConfigFile: filepath.Join(t.TempDir(), "nope.json"), Port: ptr(9999)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	cfg, err := Resolve(&Options{ConfigFile: path, Port: ptr(9999)})
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
}

func TestResolveValidationFailureLocation(t *testing.T) {
	overlay := fileOverlay(nil)
	constraints := overlay["constraints"].(map[string]any)
	delete(constraints, "type")
	path := writeConfigFile(t, overlay)

	cfg, err := Resolve(&Options{ConfigFile: path})
	assert.Nil(t, cfg)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "constraints.type", verr.FieldPath)
	assert.Equal(t, RuleMissingKey, verr.Rule)
}

func TestResolveIdempotent(t *testing.T) {
	path := writeConfigFile(t, fileOverlay(map[string]any{"port": 9000}))
	opts := &Options{ConfigFile: path, Passes: ptr(1)}

	first, err := Resolve(opts)
	require.NoError(t, err)
	second, err := Resolve(opts)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Mutating one resolution must not leak into the next.
	first.Constraints.HouseTypes[0] = "PARKING"
	first.Port = 1

	third, err := Resolve(opts)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestResolveTypedConstraints(t *testing.T) {
	path := writeConfigFile(t, fileOverlay(map[string]any{
		"constraints": map[string]any{
			"type":         "rent",
			"house_types":  []string{"apart", "HOUSE"},
			"postal_codes": []string{"75014", "75015"},
			"area":         []any{20, 60},
			"cost":         []any{nil, 1500},
			"rooms":        []any{1, nil},
			"bedrooms":     []any{nil, nil},
			"time_to": map[string]any{
				"work": map[string]any{
					"gps":  []any{48.86, 2.35},
					"time": []any{nil, 1800},
				},
			},
		},
	}))

	cfg, err := Resolve(&Options{ConfigFile: path})
	require.NoError(t, err)

	require.NotNil(t, cfg.Constraints.Type)
	assert.Equal(t, "rent", *cfg.Constraints.Type)
	assert.Equal(t, []string{"apart", "HOUSE"}, cfg.Constraints.HouseTypes)

	require.NotNil(t, cfg.Constraints.Area[0])
	assert.Equal(t, 20.0, *cfg.Constraints.Area[0])
	require.NotNil(t, cfg.Constraints.Area[1])
	assert.Equal(t, 60.0, *cfg.Constraints.Area[1])
	assert.Nil(t, cfg.Constraints.Cost[0])
	require.NotNil(t, cfg.Constraints.Cost[1])
	assert.Equal(t, 1500.0, *cfg.Constraints.Cost[1])

	work, ok := cfg.Constraints.TimeTo["work"]
	require.True(t, ok)
	assert.Equal(t, []float64{48.86, 2.35}, work.GPS)
	assert.Nil(t, work.Time[0])
	require.NotNil(t, work.Time[1])
	assert.Equal(t, 1800.0, *work.Time[1])
}

func TestResolveUnknownKeysPassThrough(t *testing.T) {
	path := writeConfigFile(t, fileOverlay(map[string]any{
		"notification_email": "flat@example.org",
	}))

	cfg, err := Resolve(&Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "flat@example.org", cfg.Extra["notification_email"])
	assert.NotContains(t, cfg.Extra, "port")
}

func TestResolveNilOptions(t *testing.T) {
	// No file, no overrides: the bare defaults are incomplete, so this is a
	// validation failure, never a panic.
	cfg, err := Resolve(nil)
	assert.Nil(t, cfg)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
