package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// EnvPrefix prefixes environment overrides, e.g. LEDGER_DATA_PATH.
const EnvPrefix = "LEDGER"

// Setting keys.
const (
	KeyHierarchyPath = "hierarchy.path"
	KeyDataPath      = "data.path"
	KeyBalance       = "balance"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
)

// Settings are the resolved application settings.
type Settings struct {
	Balance       decimal.Decimal
	HierarchyPath string
	DataPath      string
	LogLevel      string
	LogFormat     string
}

// DefaultDir returns the directory searched for config.yaml.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ledger")
}

// SetDefaults registers default values for every setting.
func SetDefaults(v *viper.Viper) {
	dir := DefaultDir()
	v.SetDefault(KeyHierarchyPath, filepath.Join(dir, "hierarchy.yaml"))
	v.SetDefault(KeyDataPath, filepath.Join(dir, "categories_timeline.csv"))
	v.SetDefault(KeyBalance, "0")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Init points v at cfgFile, or at config.yaml in the default directory and
// the working directory, and enables LEDGER_ environment overrides. A
// missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		if dir := DefaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load resolves settings from v. Paths are expanded.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		HierarchyPath: ExpandPath(v.GetString(KeyHierarchyPath)),
		DataPath:      ExpandPath(v.GetString(KeyDataPath)),
		LogLevel:      strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:     strings.ToLower(v.GetString(KeyLogFormat)),
	}

	raw := strings.TrimSpace(v.GetString(KeyBalance))
	if raw == "" {
		raw = "0"
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.NewConfigError(KeyBalance, fmt.Sprintf("not a number: %q", raw))
	}
	s.Balance = balance

	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return nil, common.NewConfigError(KeyLogLevel, err.Error())
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return nil, common.NewConfigError(KeyLogFormat, fmt.Sprintf("must be console or json, got %q", s.LogFormat))
	}

	return s, nil
}

// Validate checks that the input files exist.
func (s *Settings) Validate() error {
	inputs := []struct{ key, path string }{
		{KeyHierarchyPath, s.HierarchyPath},
		{KeyDataPath, s.DataPath},
	}
	for _, in := range inputs {
		key, path := in.key, in.path
		if path == "" {
			return &common.ConfigError{Err: common.ErrMissingConfig, Field: key, Reason: "not set"}
		}
		if _, err := os.Stat(path); err != nil {
			return &common.ConfigError{Err: common.ErrNotFound, Field: key, Reason: fmt.Sprintf("cannot read %s", path)}
		}
	}
	return nil
}
