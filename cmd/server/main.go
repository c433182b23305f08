/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the parade-state server and its maintenance
  commands. Loads configuration, builds the logger and opens the store
  before dispatching to a subcommand.

COMMANDS:
  serve      HTTP server (default when no subcommand is given)
  sweep      Delete status rows that ended before today
  parade     Print who is away for a group on a date
  outliers   Print the outlier tally for a conduct
  seed       Load a demo dataset into the configured store

GLOBAL FLAGS:
  --config   YAML config file (optional)
  --store    Backend override: sqlite, xlsx, memory
  --path     Store path override (database or workbook file)

ENVIRONMENT:
  PARADE_* variables and a .env file override the config file. See
  config/config.go for the full list.

EXAMPLES:
  ./server --store=xlsx --path=./parade.xlsx
  ./server parade --group="Platoon 1" --date=15012025
  ./server outliers --group="Platoon 1" --conduct="ippt run"

SEE ALSO:
  - api/server.go: Router configuration
  - app/: Services behind every command
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "parade-state",
		Short: "Parade state, leave and conduct tracking",
		Long: `Tracks who in a unit is away on a given day, authorizes leave against
a balance, and records conduct participation with outlier reports.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}
	opts.bind(rootCmd)

	rootCmd.AddCommand(ServeCmd(&opts))
	rootCmd.AddCommand(SweepCmd(&opts))
	rootCmd.AddCommand(ParadeCmd(&opts))
	rootCmd.AddCommand(OutliersCmd(&opts))
	rootCmd.AddCommand(SeedCmd(&opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
