package tidy

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// MatchMode selects how strings are compared against the configured N/A
// sentinel values
type MatchMode int

const (
	// MatchCompressed compares after lower-casing and stripping every
	// non-alphanumeric character, so "N / A" matches "n/a"
	MatchCompressed MatchMode = iota

	// MatchExact compares the lower-cased, trimmed value directly
	MatchExact
)

func (m MatchMode) String() string {
	switch m {
	case MatchCompressed:
		return "compressed"
	case MatchExact:
		return "exact"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

func (m MatchMode) MarshalText() ([]byte, error) {
	switch m {
	case MatchCompressed, MatchExact:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unknown match mode %d", int(m))
	}
}

func (m *MatchMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "compressed":
		*m = MatchCompressed
	case "exact":
		*m = MatchExact
	default:
		return fmt.Errorf("unknown match mode %q", string(b))
	}
	return nil
}

// Names of the settings read by [ConfigFrom]
const (
	SettingTreatEmptyStringAsNull = "treat_empty_string_as_null"
	SettingTreatWhitespaceAsEmpty = "treat_whitespace_as_empty"
	SettingNAMatchMode            = "na_match_mode"
	SettingNAValues               = "na_values"
)

// Config holds the four parameters consulted by [Classify].
//
// The zero value is not the default configuration; start from
// [DefaultConfig] and override fields as needed.
type Config struct {
	// TreatEmptyStringAsNull turns "" into nil.
	TreatEmptyStringAsNull bool

	// TreatWhitespaceAsEmpty makes whitespace-only strings count as empty.
	// It only has an effect when TreatEmptyStringAsNull is also set.
	TreatWhitespaceAsEmpty bool

	// NAMatchMode selects compressed or exact sentinel matching.
	NAMatchMode MatchMode

	// NAValues lists the sentinel strings that normalize to nil. An empty
	// list disables sentinel matching.
	NAValues []string
}

// DefaultNAValues returns a fresh copy of the default sentinel list
func DefaultNAValues() []string {
	return []string{"na", "n/a", "n a", "n-a", "n.a", "none", "null", "-"}
}

// DefaultConfig returns the default normalization parameters
func DefaultConfig() Config {
	return Config{
		TreatEmptyStringAsNull: true,
		TreatWhitespaceAsEmpty: true,
		NAMatchMode:            MatchCompressed,
		NAValues:               DefaultNAValues(),
	}
}

// Clone returns a copy of c that shares no memory with it
func (c Config) Clone() Config {
	c.NAValues = slices.Clone(c.NAValues)
	return c
}

// Settings is a read accessor for named configuration values, typically
// backed by a host configuration system
type Settings interface {
	Lookup(name string) (any, bool)
}

// MapSettings is a [Settings] backed by a plain map
type MapSettings map[string]any

func (m MapSettings) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// ConfigFrom builds a Config from s. Settings that are absent, or present
// with a nil value, keep their default.
func ConfigFrom(s Settings) (Config, error) {
	cfg := DefaultConfig()
	if s == nil {
		return cfg, nil
	}

	if v, ok := lookup(s, SettingTreatEmptyStringAsNull); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return Config{}, ErrInvalidSetting{Name: SettingTreatEmptyStringAsNull, Value: v}
		}
		cfg.TreatEmptyStringAsNull = b
	}

	if v, ok := lookup(s, SettingTreatWhitespaceAsEmpty); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return Config{}, ErrInvalidSetting{Name: SettingTreatWhitespaceAsEmpty, Value: v}
		}
		cfg.TreatWhitespaceAsEmpty = b
	}

	if v, ok := lookup(s, SettingNAMatchMode); ok {
		switch mode := v.(type) {
		case MatchMode:
			cfg.NAMatchMode = mode
		case string:
			if err := cfg.NAMatchMode.UnmarshalText([]byte(mode)); err != nil {
				return Config{}, ErrInvalidSetting{Name: SettingNAMatchMode, Value: v}
			}
		default:
			return Config{}, ErrInvalidSetting{Name: SettingNAMatchMode, Value: v}
		}
	}

	if v, ok := lookup(s, SettingNAValues); ok {
		values, err := naValuesFrom(v)
		if err != nil {
			return Config{}, ErrInvalidSetting{Name: SettingNAValues, Value: v}
		}
		cfg.NAValues = values
	}

	return cfg, nil
}

func lookup(s Settings, name string) (any, bool) {
	v, ok := s.Lookup(name)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// naValuesFrom accepts a list of strings or a single comma-separated string
func naValuesFrom(v any) ([]string, error) {
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return cast.ToStringSliceE(v)
}

// LoadConfig reads a YAML document holding the settings named by the
// Setting* constants. The settings may sit at the top level or below a
// "tidy" key.
func LoadConfig(r io.Reader) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return DefaultConfig(), nil
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if nested, ok := doc["tidy"].(map[string]any); ok {
		doc = nested
	}

	return ConfigFrom(MapSettings(doc))
}

// LoadConfigFile is [LoadConfig] for a file on disk
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
