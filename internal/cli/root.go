package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/ui"
	"github.com/rileyhilliard/sensdash/internal/util"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "sensdash",
	Short: "Live terminal dashboard for sensor readings",
	Long: `sensdash shows a live, paginated grid of sensor readings: CPU, load,
memory, network, thermal zones and remote hosts over SSH.

Watches are glob patterns over "family/label" paths, for example
"cpu/usage", "thermal/*" or "load". Add and remove them from the config
file or live from inside the dashboard (a / d). Press ? for help.

When stdout is not a terminal, sensdash prints changed values as plain
lines instead.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
		if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context(), dashOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.sensdash.yaml or ~/.config/sensdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	addDashboardFlags(rootCmd, &dashOpts)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

func printError(w io.Writer, err error) {
	if isUnknownCommandError(err) {
		err = unknownCommandError(rootCmd, err)
	}
	fmt.Fprintln(w, err)
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls foo out of `unknown command "foo" for "sensdash"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// unknownCommandError turns cobra's terse message into a structured error,
// suggesting close command names when there are any.
func unknownCommandError(root *cobra.Command, err error) error {
	name := extractUnknownCommand(err)
	if !strings.HasPrefix(err.Error(), "unknown command") || name == "" {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Unrecognized option",
			"Run 'sensdash --help' to see what's available.")
	}

	var names []string
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	suggestion := "Run 'sensdash --help' to see available commands."
	if similar := util.SuggestSimilar(name, names, 3); len(similar) > 0 {
		suggestion = "Did you mean: " + strings.Join(similar, ", ") + "?"
	}
	return errors.New(errors.ErrConfig, fmt.Sprintf("Unknown command %q", name), suggestion)
}
