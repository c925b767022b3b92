package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/sensors"
	"github.com/rileyhilliard/sensdash/internal/ui"
	"github.com/rileyhilliard/sensdash/internal/util"
)

var listCaseSensitive bool

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List sensors that can be watched",
	Long: `List every sensor the local machine and configured remote hosts
expose, optionally filtered by a watch pattern.

Examples:
  sensdash list
  sensdash list thermal
  sensdash list 'cpu/cpu*'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		cfg, _, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		src := openSources(cfg, logger.NewEnvLogger("[list]"))
		defer src.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Remote hosts: %s\n\n", util.JoinOrNone(cfg.RemoteHosts))
		return writeSensorTable(cmd.OutOrStdout(), src.reg.Available(), pattern, listCaseSensitive)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listCaseSensitive, "case-sensitive", false, "match the pattern case-sensitively")
	rootCmd.AddCommand(listCmd)
}

// writeSensorTable prints the descriptors matching pattern, or all of them
// when pattern is empty.
func writeSensorTable(w io.Writer, ds []sensors.Descriptor, pattern string, caseSensitive bool) error {
	if pattern != "" {
		if err := config.ValidatePattern(pattern); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Bad pattern %q", pattern),
				`Patterns are globs over "family/label", e.g. "cpu/*" or "thermal".`)
		}
	}

	var rows [][]string
	for _, d := range ds {
		if pattern != "" && !sensors.Match(pattern, d.Path(), caseSensitive) {
			continue
		}
		rows = append(rows, []string{d.Path(), d.Unit.String(), d.Description})
	}
	if len(rows) == 0 {
		if pattern == "" {
			fmt.Fprintln(w, "No sensors found.")
		} else {
			fmt.Fprintf(w, "No sensors match %q.\n", pattern)
		}
		return nil
	}

	fmt.Fprintln(w, ui.RenderTable([]string{"SENSOR", "UNIT", "DESCRIPTION"}, rows))
	fmt.Fprintf(w, "\n%d %s\n", len(rows), util.Pluralize(len(rows), "sensor", "sensors"))
	return nil
}
