package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/srv/ledger")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/data/t.csv", want: filepath.Join(home, "data/t.csv")},
		{in: "$LEDGER_TEST_DIR/t.csv", want: "/srv/ledger/t.csv"},
		{in: "/abs/~/t.csv", want: "/abs/~/t.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), "input %q", tt.in)
	}
}

func TestInitAndLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
hierarchy:
  path: /tmp/h.yaml
data:
  path: /tmp/d.csv
balance: "705000.50"
logging:
  level: DEBUG
  format: json
`), 0o600))

	v := viper.New()
	require.NoError(t, Init(v, cfg))

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.yaml", s.HierarchyPath)
	assert.Equal(t, "/tmp/d.csv", s.DataPath)
	assert.True(t, decimal.RequireFromString("705000.50").Equal(s.Balance))
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
}

func TestInitAndLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_DATA_PATH", "/env/data.csv")
	t.Setenv("LEDGER_BALANCE", "1200")

	v := viper.New()
	require.NoError(t, Init(v, ""), "no config file is not an error")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/env/data.csv", s.DataPath)
	assert.True(t, decimal.NewFromInt(1200).Equal(s.Balance))
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
}

func TestInit_ExplicitFileMissing(t *testing.T) {
	err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "balance", key: KeyBalance, value: "lots"},
		{name: "level", key: KeyLogLevel, value: "chatty"},
		{name: "format", key: KeyLogFormat, value: "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)

			var cfgErr *common.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Field)
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	dir := t.TempDir()
	h := filepath.Join(dir, "h.yaml")
	d := filepath.Join(dir, "d.csv")
	require.NoError(t, os.WriteFile(h, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(d, []byte("x"), 0o600))

	assert.NoError(t, (&Settings{HierarchyPath: h, DataPath: d}).Validate())

	err := (&Settings{HierarchyPath: h}).Validate()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	err = (&Settings{HierarchyPath: h, DataPath: filepath.Join(dir, "nope.csv")}).Validate()
	assert.ErrorIs(t, err, common.ErrNotFound)
}
