package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/rileyhilliard/sensdash/internal/errors"
)

// Smallest layout the dashboard can draw: header, footer, and one row of
// sensors.
const (
	MinRowsFloor = 5
	MinColsFloor = 20
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest sensdash release.")
	}

	if err := validateTiming(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Durations look like 500ms, 2s or 1m.")
	}

	switch cfg.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown theme '%s'", cfg.Theme),
			"Use auto, dark or light.")
	}

	if err := validateLayout(cfg.Layout); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'layout' section in your .sensdash.yaml.")
	}

	for i, w := range cfg.Watches {
		if err := ValidatePattern(w.Pattern); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("watches[%d]: %v", i, err),
				"Patterns are globs over family/label, like cpu/* or thermal/zone0.")
		}
		if w.Period < 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("watches[%d]: negative period %s", i, w.Period),
				"Leave period out to use sensor_timer.")
		}
	}

	for i, spec := range cfg.StatusBar {
		if err := validateBarSpec(spec); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("status_bar[%d]: %v", i, err),
				"Status bar items look like \"GPU :gpu/temp\".")
		}
	}

	for _, h := range cfg.RemoteHosts {
		if h == "" || strings.ContainsAny(h, "/ \t*?[") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Remote host '%s' can't be used as a sensor family", h),
				"Use the plain alias from ~/.ssh/config.")
		}
	}
	return nil
}

// ValidatePattern checks a watch pattern is a usable glob.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("empty pattern")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return nil
}

func validateTiming(cfg *Config) error {
	if cfg.SensorTimer <= 0 {
		return fmt.Errorf("sensor_timer must be positive, got %s", cfg.SensorTimer)
	}
	if cfg.WindowCheck <= 0 {
		return fmt.Errorf("window_check must be positive, got %s", cfg.WindowCheck)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative, got %s", cfg.Timeout)
	}
	if cfg.Precision < 0 {
		return fmt.Errorf("precision can't be negative, got %s", cfg.Precision)
	}
	return nil
}

func validateLayout(l LayoutConfig) error {
	if l.ValueWidth < 1 {
		return fmt.Errorf("layout.value_width must be at least 1, got %d", l.ValueWidth)
	}
	if l.LabelWidth < 0 {
		return fmt.Errorf("layout.label_width can't be negative, got %d", l.LabelWidth)
	}
	if l.MinRows < MinRowsFloor {
		return fmt.Errorf("layout.min_rows must be at least %d, got %d", MinRowsFloor, l.MinRows)
	}
	if l.MinCols < MinColsFloor {
		return fmt.Errorf("layout.min_cols must be at least %d, got %d", MinColsFloor, l.MinCols)
	}
	return nil
}

// validateBarSpec checks the "description:pattern" shape. The description
// may be empty; the pattern may not.
func validateBarSpec(spec string) error {
	i := strings.LastIndex(spec, ":")
	if i < 0 {
		return fmt.Errorf("missing ':' in %q", spec)
	}
	return ValidatePattern(spec[i+1:])
}
