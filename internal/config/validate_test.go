package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"zero sensor timer", func(c *Config) { c.SensorTimer = 0 }, "sensor_timer must be positive"},
		{"zero window check", func(c *Config) { c.WindowCheck = 0 }, "window_check must be positive"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout can't be negative"},
		{"negative precision", func(c *Config) { c.Precision = -1 }, "precision can't be negative"},
		{"unknown theme", func(c *Config) { c.Theme = "neon" }, "Unknown theme"},
		{"value width", func(c *Config) { c.Layout.ValueWidth = 0 }, "value_width"},
		{"label width", func(c *Config) { c.Layout.LabelWidth = -2 }, "label_width"},
		{"min rows", func(c *Config) { c.Layout.MinRows = 2 }, "min_rows"},
		{"min cols", func(c *Config) { c.Layout.MinCols = 5 }, "min_cols"},
		{"empty watch", func(c *Config) { c.Watches = []Watch{{Pattern: " "}} }, "watches[0]"},
		{"bad watch glob", func(c *Config) { c.Watches = []Watch{{Pattern: "cpu/["}} }, "bad pattern"},
		{"negative watch period", func(c *Config) {
			c.Watches = []Watch{{Pattern: "cpu/*", Period: -time.Second}}
		}, "negative period"},
		{"status bar without colon", func(c *Config) { c.StatusBar = []string{"GPU gpu/temp"} }, "missing ':'"},
		{"status bar empty pattern", func(c *Config) { c.StatusBar = []string{"GPU :"} }, "empty pattern"},
		{"status bar empty description", func(c *Config) { c.StatusBar = []string{":gpu/temp"} }, ""},
		{"remote host with slash", func(c *Config) { c.RemoteHosts = []string{"a/b"} }, "can't be used"},
		{"remote host ok", func(c *Config) { c.RemoteHosts = []string{"web1"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
