package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/console"
	"github.com/rileyhilliard/sensdash/internal/dashboard"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/screen"
	"github.com/rileyhilliard/sensdash/internal/sensors"
	"github.com/rileyhilliard/sensdash/pkg/sshutil"
)

// remoteDialTimeout bounds each SSH connection attempt to a remote host.
const remoteDialTimeout = 5 * time.Second

// dashboardOptions are the root command's flags.
type dashboardOptions struct {
	Timeout      time.Duration
	SensorTimer  time.Duration
	Watches      []string
	Console      bool
	ExplicitOnly bool
}

var dashOpts dashboardOptions

func addDashboardFlags(cmd *cobra.Command, opts *dashboardOptions) {
	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 0, "exit after this long (0 runs until quit)")
	cmd.Flags().DurationVar(&opts.SensorTimer, "sensor-timer", 0, "default update period for watches")
	cmd.Flags().StringArrayVarP(&opts.Watches, "watch", "w", nil, "extra watch pattern (repeatable)")
	cmd.Flags().BoolVar(&opts.Console, "console", false, "print plain lines instead of the dashboard")
	cmd.Flags().BoolVar(&opts.ExplicitOnly, "explicit-only", false, "status bar shows only watched sensors")
}

// Overridden in tests.
var (
	localProviders = func() []sensors.Provider {
		return sensors.LocalProviders(sensors.DefaultProcRoot, sensors.DefaultSysRoot)
	}
	remoteDialer = func() sshutil.Dialer { return sshutil.DialRunner(remoteDialTimeout) }
)

// sources is the registry plus the remote providers that hold connections.
type sources struct {
	reg     *sensors.Registry
	remotes []*sensors.RemoteProvider
	log     logger.Logger
}

// openSources builds a registry over the local families and one family per
// configured remote host. Remote hosts connect lazily on first read.
func openSources(cfg *config.Config, log logger.Logger) *sources {
	providers := localProviders()
	src := &sources{log: log}
	dial := remoteDialer()
	for _, host := range cfg.RemoteHosts {
		rp := sensors.NewRemoteProvider(host, dial, nil)
		src.remotes = append(src.remotes, rp)
		providers = append(providers, rp)
	}
	src.reg = sensors.NewRegistry(log, providers...)
	return src
}

func (s *sources) Close() {
	for _, rp := range s.remotes {
		if err := rp.Close(); err != nil {
			s.log.Debug("closing %s: %v", rp.Family(), err)
		}
	}
}

// loadConfig finds, loads and validates the config, then applies flag
// overrides.
func loadConfig(opts dashboardOptions) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if opts.SensorTimer > 0 {
		cfg.SensorTimer = opts.SensorTimer
	}
	if opts.ExplicitOnly {
		cfg.StatusBarExplicitOnly = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if path != "" {
		logger.Default().Debug("config: %s", path)
	}
	return cfg, nil
}

// watchAll adds the configured watches, then the --watch patterns. A config
// watch matching nothing is only logged; flag patterns must be valid.
func watchAll(reg *sensors.Registry, cfg *config.Config, extra []string, log logger.Logger) error {
	for _, w := range cfg.Watches {
		n, err := reg.AddWatch(w.Pattern, cfg.PeriodFor(w), w.CaseSensitive, false)
		if err != nil {
			log.Warn("watch %q: %v", w.Pattern, err)
			continue
		}
		if n == 0 {
			log.Debug("watch %q matches nothing", w.Pattern)
		}
	}
	for _, pattern := range extra {
		if err := config.ValidatePattern(pattern); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Bad --watch pattern %q", pattern),
				`Patterns are globs over "family/label", e.g. "cpu/*" or "thermal".`)
		}
		if _, err := reg.AddWatch(pattern, cfg.SensorTimer, false, false); err != nil {
			return err
		}
	}
	return nil
}

// runDashboard shows the dashboard, or prints plain lines to out when the
// terminal can't host it.
func runDashboard(ctx context.Context, opts dashboardOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logger.NewEnvLogger("[sensdash]")

	src := openSources(cfg, log)
	defer src.Close()
	if err := watchAll(src.reg, cfg, opts.Watches, log); err != nil {
		return err
	}

	if !opts.Console {
		err := runScreen(ctx, src.reg, cfg, log)
		if !errors.IsCode(err, errors.ErrTerminal) {
			return err
		}
		log.Debug("no dashboard: %v", err)
	}
	return console.New(src.reg, cfg, out, log).Run(ctx)
}

func runScreen(ctx context.Context, reg *sensors.Registry, cfg *config.Config, log logger.Logger) error {
	opts := []screen.Option{screen.WithLogger(log)}
	switch cfg.Theme {
	case config.ThemeDark:
		opts = append(opts, screen.WithDarkBackground(true))
	case config.ThemeLight:
		opts = append(opts, screen.WithDarkBackground(false))
	}
	eng, err := screen.New(opts...)
	if err != nil {
		return err
	}
	d, err := dashboard.New(reg, eng, cfg, log)
	if err != nil {
		return err
	}
	return d.Run(ctx, eng)
}
