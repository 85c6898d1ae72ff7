package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Bound is an ordered (min, max) numeric range filter. A nil side means
// that side is unbounded. When both sides are set, max must be strictly
// greater than min.
type Bound [2]*float64

// TimeToConstraint limits travel time (in seconds) to a named place.
type TimeToConstraint struct {
	GPS  []float64 `json:"gps"` // [lat, lng]
	Time Bound     `json:"time"`
}

// Constraints is the block of search-filter criteria a listing must match.
type Constraints struct {
	Type        *string                     `json:"type"`        // RENT, SALE, or SHARING
	HouseTypes  []string                    `json:"house_types"` // APART, HOUSE, PARKING, LAND, OTHER, UNKNOWN
	PostalCodes []string                    `json:"postal_codes"`
	Area        Bound                       `json:"area"` // m^2
	Cost        Bound                       `json:"cost"` // currency units
	Rooms       Bound                       `json:"rooms"`
	Bedrooms    Bound                       `json:"bedrooms"`
	TimeTo      map[string]TimeToConstraint `json:"time_to"`
}

// Config represents the flatisfy configuration.
type Config struct {
	Constraints   Constraints `json:"constraints"`
	NavitiaAPIKey *string     `json:"navitia_api_key"`
	Passes        int         `json:"passes"`      // number of filtering passes, 0-3
	MaxEntries    *int        `json:"max_entries"` // cap on fetched listings, nil = unlimited
	DataDirectory *string     `json:"data_directory"`
	ModulesPath   *string     `json:"modules_path"`
	Database      *string     `json:"database"` // connection string, derived from DataDirectory when unset
	SearchIndex   *string     `json:"search_index"`
	Port          int         `json:"port"`
	Host          string      `json:"host"`
	Webserver     *string     `json:"webserver"`
	Backends      []string    `json:"backends"`

	// Extra holds unknown top-level keys from the config file. They are
	// carried through resolution untouched.
	Extra map[string]any `json:"-"`
}

// Default returns a fresh Config with all defaults applied. Every call
// allocates a new value, so callers can mutate the result freely.
func Default() *Config {
	return &Config{
		Constraints: Constraints{
			HouseTypes:  []string{},
			PostalCodes: []string{},
			TimeTo:      map[string]TimeToConstraint{},
		},
		Passes: 3,
		Port:   8080,
		Host:   "127.0.0.1",
	}
}

// asMap renders the config as the generic JSON mapping the resolver and
// validator operate on. Values take their JSON shapes (numbers become
// float64), matching what a decoded config file produces.
func (c *Config) asMap() map[string]any {
	data, err := json.Marshal(c)
	if err != nil {
		// Config holds only JSON-serializable fields.
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// Validate checks the config against the constraint schema. It returns nil
// on success or a *ValidationError naming the first failing field.
func (c *Config) Validate() error {
	return Validate(c.asMap())
}

// WriteDefault serializes the default configuration as pretty-printed JSON
// and writes it to the named file, or to stdout when output is empty or "-".
func WriteDefault(output string) error {
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	data = append(data, '\n')

	if output == "" || output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
