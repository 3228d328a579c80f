package tidy_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhoelle/tidy"
)

func TestDefaultConfig(t *testing.T) {
	cfg := tidy.DefaultConfig()
	assert.True(t, cfg.TreatEmptyStringAsNull)
	assert.True(t, cfg.TreatWhitespaceAsEmpty)
	assert.Equal(t, tidy.MatchCompressed, cfg.NAMatchMode)
	assert.Equal(t, []string{"na", "n/a", "n a", "n-a", "n.a", "none", "null", "-"}, cfg.NAValues)

	cfg.NAValues[0] = "changed"
	assert.Equal(t, "na", tidy.DefaultConfig().NAValues[0])
}

func TestConfig_Clone(t *testing.T) {
	cfg := tidy.DefaultConfig()
	clone := cfg.Clone()
	clone.NAValues[0] = "changed"
	assert.Equal(t, "na", cfg.NAValues[0])
}

func TestMatchMode_text(t *testing.T) {
	var m tidy.MatchMode
	require.NoError(t, m.UnmarshalText([]byte(" Exact ")))
	assert.Equal(t, tidy.MatchExact, m)

	b, err := tidy.MatchCompressed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "compressed", string(b))

	assert.Error(t, m.UnmarshalText([]byte("fuzzy")))
	_, err = tidy.MatchMode(7).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "MatchMode(7)", tidy.MatchMode(7).String())
}

func TestConfigFrom(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		cfg, err := tidy.ConfigFrom(nil)
		require.NoError(t, err)
		assert.Equal(t, tidy.DefaultConfig(), cfg)
	})

	t.Run("absent and nil settings keep defaults", func(t *testing.T) {
		cfg, err := tidy.ConfigFrom(tidy.MapSettings{
			tidy.SettingTreatEmptyStringAsNull: nil,
		})
		require.NoError(t, err)
		assert.Equal(t, tidy.DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := tidy.ConfigFrom(tidy.MapSettings{
			tidy.SettingTreatEmptyStringAsNull: "false",
			tidy.SettingTreatWhitespaceAsEmpty: 0,
			tidy.SettingNAMatchMode:            "exact",
			tidy.SettingNAValues:               "n/a, missing",
		})
		require.NoError(t, err)
		assert.Equal(t, tidy.Config{
			TreatEmptyStringAsNull: false,
			TreatWhitespaceAsEmpty: false,
			NAMatchMode:            tidy.MatchExact,
			NAValues:               []string{"n/a", "missing"},
		}, cfg)
	})

	t.Run("list of sentinels", func(t *testing.T) {
		cfg, err := tidy.ConfigFrom(tidy.MapSettings{
			tidy.SettingNAValues:    []any{"x", "y"},
			tidy.SettingNAMatchMode: tidy.MatchExact,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, cfg.NAValues)
		assert.Equal(t, tidy.MatchExact, cfg.NAMatchMode)
	})

	t.Run("empty sentinel string disables matching", func(t *testing.T) {
		cfg, err := tidy.ConfigFrom(tidy.MapSettings{tidy.SettingNAValues: " "})
		require.NoError(t, err)
		assert.Empty(t, cfg.NAValues)
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, s := range map[string]tidy.MapSettings{
			"bool": {tidy.SettingTreatEmptyStringAsNull: "sometimes"},
			"mode": {tidy.SettingNAMatchMode: "fuzzy"},
			"kind": {tidy.SettingNAMatchMode: 3.5},
		} {
			_, err := tidy.ConfigFrom(s)
			var target tidy.ErrInvalidSetting
			assert.True(t, errors.As(err, &target), name)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		cfg, err := tidy.LoadConfig(strings.NewReader("\n"))
		require.NoError(t, err)
		assert.Equal(t, tidy.DefaultConfig(), cfg)
	})

	t.Run("nested under tidy", func(t *testing.T) {
		cfg, err := tidy.LoadConfig(strings.NewReader(`
tidy:
  treat_whitespace_as_empty: false
  na_match_mode: exact
  na_values: [N/A, none]
`))
		require.NoError(t, err)
		assert.True(t, cfg.TreatEmptyStringAsNull)
		assert.False(t, cfg.TreatWhitespaceAsEmpty)
		assert.Equal(t, tidy.MatchExact, cfg.NAMatchMode)
		assert.Equal(t, []string{"N/A", "none"}, cfg.NAValues)
	})

	t.Run("top level", func(t *testing.T) {
		cfg, err := tidy.LoadConfig(strings.NewReader("treat_empty_string_as_null: false\n"))
		require.NoError(t, err)
		assert.False(t, cfg.TreatEmptyStringAsNull)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tidy.LoadConfig(strings.NewReader("na_values: [unterminated"))
		assert.Error(t, err)
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("na_values: [missing]\n"), 0o600))

	cfg, err := tidy.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing"}, cfg.NAValues)

	_, err = tidy.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
