package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .sensdash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// SensorTimer is the update period of watches that don't set one.
	SensorTimer time.Duration `yaml:"sensor_timer" mapstructure:"sensor_timer"`

	// Timeout exits the dashboard after this long. Zero runs until quit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// WindowCheck is how often the terminal size is re-queried.
	WindowCheck time.Duration `yaml:"window_check" mapstructure:"window_check"`

	// Precision is the tolerance used when merging periods into one tick.
	Precision time.Duration `yaml:"precision" mapstructure:"precision"`

	// Watches are added at startup, in order.
	Watches []Watch `yaml:"watches" mapstructure:"watches"`

	// StatusBar holds extra status-bar items as "description:pattern".
	StatusBar []string `yaml:"status_bar" mapstructure:"status_bar"`

	// StatusBarExplicitOnly keeps the status bar from adding watches of its own.
	StatusBarExplicitOnly bool `yaml:"status_bar_explicit_only" mapstructure:"status_bar_explicit_only"`

	// Theme is auto, dark, or light.
	Theme string `yaml:"theme" mapstructure:"theme"`

	Layout LayoutConfig `yaml:"layout" mapstructure:"layout"`

	// RemoteHosts are ssh aliases polled as sensor families of their own.
	RemoteHosts []string `yaml:"remote_hosts" mapstructure:"remote_hosts"`

	// LogFile receives log output while the dashboard owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// Watch is a glob over "family/label" plus how often matches update.
type Watch struct {
	Pattern       string        `yaml:"pattern" mapstructure:"pattern"`
	Period        time.Duration `yaml:"period,omitempty" mapstructure:"period"`
	CaseSensitive bool          `yaml:"case_sensitive,omitempty" mapstructure:"case_sensitive"`
}

// LayoutConfig controls the sensor grid.
type LayoutConfig struct {
	// MultiColumn starts in multi-column mode (toggled with x/Tab).
	MultiColumn bool `yaml:"multi_column" mapstructure:"multi_column"`

	// ValueWidth is the room reserved for each value.
	ValueWidth int `yaml:"value_width" mapstructure:"value_width"`

	// LabelWidth caps label width. Zero sizes labels to the column.
	LabelWidth int `yaml:"label_width" mapstructure:"label_width"`

	// MinRows and MinCols are the smallest terminal the dashboard runs in.
	MinRows int `yaml:"min_rows" mapstructure:"min_rows"`
	MinCols int `yaml:"min_cols" mapstructure:"min_cols"`

	// BarLeftToRight packs automatic status-bar items from the left edge.
	BarLeftToRight bool `yaml:"bar_left_to_right" mapstructure:"bar_left_to_right"`
}

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// DefaultWatches is what a fresh config watches.
var DefaultWatches = []Watch{
	{Pattern: "cpu/usage"},
	{Pattern: "load/*"},
	{Pattern: "mem/*"},
	{Pattern: "thermal/*"},
	{Pattern: "uptime/system"},
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		SensorTimer: time.Second,
		WindowCheck: time.Second,
		Precision:   100 * time.Millisecond,
		Watches:     append([]Watch(nil), DefaultWatches...),
		Theme:       ThemeAuto,
		Layout: LayoutConfig{
			ValueWidth: 10,
			MinRows:    10,
			MinCols:    40,
		},
		LogFile: defaultLogFile(),
	}
}

// PeriodFor returns the watch's period, or the sensor timer when unset.
func (c *Config) PeriodFor(w Watch) time.Duration {
	if w.Period > 0 {
		return w.Period
	}
	return c.SensorTimer
}
