package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/ui"
	"github.com/rileyhilliard/sensdash/internal/util"
	"github.com/rileyhilliard/sensdash/pkg/sshutil"
)

// InitOptions holds options for config init.
type InitOptions struct {
	Path           string   // where to write; empty means ./.sensdash.yaml
	Global         bool     // write ~/.config/sensdash/config.yaml instead
	Overwrite      bool     // replace an existing file without asking
	NonInteractive bool     // skip prompts, use defaults and flags
	Hosts          []string // remote hosts to poll
	SkipProbe      bool     // don't test SSH connections
}

var (
	initOpts          InitOptions
	addWatchPeriod    time.Duration
	addWatchSensitive bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or edit the sensdash config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a new config file",
	Long: `Write a new .sensdash.yaml in the current directory (or the global
config with --global). Without --non-interactive a short form asks for
timings, watches and remote hosts from ~/.ssh/config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if opts.Path == "" {
			opts.Path = cfgFile
		}
		return Init(cmd.OutOrStdout(), opts)
	},
}

var configAddWatchCmd = &cobra.Command{
	Use:   "add-watch <pattern>",
	Short: "Append a watch to the config file",
	Long: `Append a watch pattern to the config file in use, keeping the
rest of the file and its comments intact.

Examples:
  sensdash config add-watch thermal
  sensdash config add-watch 'net/eth0_*' --period 5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addWatch(cmd.OutOrStdout(), cfgFile, config.Watch{
			Pattern:       args[0],
			Period:        addWatchPeriod,
			CaseSensitive: addWatchSensitive,
		})
	},
}

func init() {
	f := configInitCmd.Flags()
	f.BoolVar(&initOpts.Global, "global", false, "write the global config file")
	f.BoolVar(&initOpts.Overwrite, "force", false, "overwrite an existing config file")
	f.BoolVar(&initOpts.NonInteractive, "non-interactive", false, "skip prompts")
	f.StringSliceVar(&initOpts.Hosts, "host", nil, "remote ssh host to poll (repeatable)")
	f.BoolVar(&initOpts.SkipProbe, "skip-probe", false, "don't test connections to remote hosts")

	configAddWatchCmd.Flags().DurationVar(&addWatchPeriod, "period", 0, "update period (default: sensor_timer)")
	configAddWatchCmd.Flags().BoolVar(&addWatchSensitive, "case-sensitive", false, "match case-sensitively")

	configCmd.AddCommand(configInitCmd, configAddWatchCmd)
	rootCmd.AddCommand(configCmd)
}

// probeHost is replaced in tests.
var probeHost = func(host string) error {
	c, err := sshutil.Dial(host, remoteDialTimeout)
	if err != nil {
		return err
	}
	return c.Close()
}

// initAnswers are the form fields, as typed.
type initAnswers struct {
	SensorTimer string
	Timeout     string
	Theme       string
	Watches     []string
	Hosts       []string
}

func defaultAnswers(hosts []string) initAnswers {
	a := initAnswers{SensorTimer: "1s", Timeout: "0s", Theme: config.ThemeAuto, Hosts: hosts}
	for _, w := range config.DefaultWatches {
		a.Watches = append(a.Watches, w.Pattern)
	}
	return a
}

// apply fills cfg from the answers.
func (a initAnswers) apply(cfg *config.Config) error {
	timer, err := parsePositive(a.SensorTimer)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Bad update period", "Use a duration like 1s or 500ms.")
	}
	cfg.SensorTimer = timer
	if cfg.Timeout, err = time.ParseDuration(strings.TrimSpace(a.Timeout)); err != nil || cfg.Timeout < 0 {
		return errors.New(errors.ErrConfig, fmt.Sprintf("Bad timeout %q", a.Timeout), "Use a duration like 10m, or 0s for none.")
	}
	cfg.Theme = a.Theme
	cfg.Watches = nil
	for _, p := range a.Watches {
		cfg.Watches = append(cfg.Watches, config.Watch{Pattern: p})
	}
	cfg.RemoteHosts = append([]string(nil), a.Hosts...)
	for _, h := range cfg.RemoteHosts {
		// Remote families are matched by alias.
		cfg.Watches = append(cfg.Watches, config.Watch{Pattern: h})
	}
	return config.Validate(cfg)
}

func parsePositive(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%q is not a positive duration like 1s or 500ms", s)
	}
	return d, nil
}

// watchChoices are offered in the form; the defaults come preselected.
var watchChoices = []string{"cpu/usage", "cpu/*", "load/*", "mem/*", "net/*", "thermal/*", "uptime/system"}

// Init writes a new config file.
func Init(w io.Writer, opts InitOptions) error {
	path := opts.Path
	if opts.Global {
		path = config.GlobalConfigPath()
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	answers := defaultAnswers(opts.Hosts)
	if !opts.NonInteractive {
		if err := askInit(&answers); err != nil {
			return err
		}
	}

	cfg := config.DefaultConfig()
	if err := answers.apply(cfg); err != nil {
		return err
	}

	if !opts.SkipProbe {
		probeHosts(w, cfg.RemoteHosts)
	}

	if err := config.Write(path, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.Success(ui.SymbolSuccess), path)
	fmt.Fprintf(w, "Watching %d %s on %d remote %s.\n",
		len(cfg.Watches), util.Pluralize(len(cfg.Watches), "pattern", "patterns"),
		len(cfg.RemoteHosts), util.Pluralize(len(cfg.RemoteHosts), "host", "hosts"))
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  sensdash list  - see what can be watched")
	fmt.Fprintln(w, "  sensdash       - open the dashboard")
	return nil
}

func askInit(a *initAnswers) error {
	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Default update period").
				Description("How often sensors are re-read unless a watch says otherwise").
				Value(&a.SensorTimer).
				Validate(func(s string) error {
					_, err := parsePositive(s)
					return err
				}),
			huh.NewInput().
				Title("Exit after").
				Description("0s keeps the dashboard open until you quit").
				Value(&a.Timeout).
				Validate(func(s string) error {
					d, err := time.ParseDuration(strings.TrimSpace(s))
					if err != nil || d < 0 {
						return fmt.Errorf("use a duration like 10m or 0s")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(config.ThemeAuto, config.ThemeDark, config.ThemeLight)...).
				Value(&a.Theme),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Watches").
				Options(huh.NewOptions(watchChoices...)...).
				Value(&a.Watches),
		),
	}

	if hosts, err := sshutil.ListHosts(); err == nil && len(hosts) > 0 {
		opts := make([]huh.Option[string], len(hosts))
		for i, h := range hosts {
			opts[i] = huh.NewOption(h.Label(), h.Alias)
		}
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Remote hosts").
				Description("Poll load and memory over SSH").
				Options(opts...).
				Value(&a.Hosts),
		))
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	return nil
}

// probeHosts tries each host once. Failures are reported but the host is
// kept; the dashboard retries on every read.
func probeHosts(w io.Writer, hosts []string) {
	for _, h := range hosts {
		s := ui.NewSpinner(w, "Connecting to "+h)
		s.Start()
		if err := probeHost(h); err != nil {
			s.Fail(err.Error())
			continue
		}
		s.Success("")
	}
}

// addWatch appends w to the config file found from explicit.
func addWatch(out io.Writer, explicit string, w config.Watch) error {
	if err := config.ValidatePattern(w.Pattern); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Bad pattern %q", w.Pattern),
			`Patterns are globs over "family/label", e.g. "cpu/*" or "thermal".`)
	}
	if w.Period < 0 {
		return errors.New(errors.ErrConfig, "Period can't be negative", "Leave --period unset to use sensor_timer.")
	}

	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to add to",
			"Run 'sensdash config init' first, or pass --config.")
	}

	added, err := config.AppendWatch(path, w)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to update %s", path),
			"Check the file is valid YAML and writable")
	}
	if !added {
		fmt.Fprintf(out, "%s %q is already watched in %s\n", ui.Warning(ui.SymbolWarning), w.Pattern, path)
		return nil
	}
	fmt.Fprintf(out, "%s Added %q to %s\n", ui.Success(ui.SymbolSuccess), w.Pattern, path)
	return nil
}
