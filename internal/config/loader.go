package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sensdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sensdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SENSDASH_SENSOR_TIMER.
	EnvPrefix = "SENSDASH"
)

// Load reads config from the specified path. An empty path yields the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'sensdash config init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}
	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sensdash.yaml in current directory
// 3. ~/.config/sensdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	local := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}
	return "", nil
}

// GlobalConfigPath returns ~/.config/sensdash/config.yaml, or empty if the
// home directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault finds and loads the config, falling back to defaults when
// there is none. Returns the path it loaded, if any.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults mirrors DefaultConfig so env overrides apply to every key.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("sensor_timer", d.SensorTimer)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("window_check", d.WindowCheck)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("status_bar_explicit_only", d.StatusBarExplicitOnly)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("layout.multi_column", d.Layout.MultiColumn)
	v.SetDefault("layout.value_width", d.Layout.ValueWidth)
	v.SetDefault("layout.label_width", d.Layout.LabelWidth)
	v.SetDefault("layout.min_rows", d.Layout.MinRows)
	v.SetDefault("layout.min_cols", d.Layout.MinCols)
	v.SetDefault("layout.bar_left_to_right", d.Layout.BarLeftToRight)
	v.SetDefault("log_file", d.LogFile)
}

func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	if v.IsSet("watches") {
		// Decoding into a non-empty slice would keep trailing defaults.
		cfg.Watches = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}
	cfg.LogFile = ExpandTilde(cfg.LogFile)
	return cfg, nil
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sensdash.log")
	}
	return filepath.Join(dir, "sensdash", "sensdash.log")
}
