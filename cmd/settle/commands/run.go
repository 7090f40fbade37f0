package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farhan-ahmed1/settle/internal/aggregate"
	"github.com/farhan-ahmed1/settle/internal/logger"
)

// Run returns the run command.
func Run(a *app) *cobra.Command {
	var settled bool

	cmd := &cobra.Command{
		Use:   "run <handler>...",
		Short: "Run named handlers concurrently and aggregate their results",
		Long: `Run starts every named handler at once and waits for all of them.
On success it prints the results in argument order. If any handler fails it
prints the failure of the earliest failing argument.

Handlers: fetch, sleep, fail.`,
		Example: "  settle run sleep fetch\n  settle run --settled fail sleep fail",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.registry.Launch(cmd.Context(), args...)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(a.registry.Types(), ", "))
			}

			if settled {
				return printJSON(cmd.OutOrStdout(), aggregate.Settle(a.aggregator, tasks...))
			}

			values, err := aggregate.Run(a.aggregator, tasks...).Unwrap()
			if err != nil {
				a.log.Warn("Run failed", logger.Fields{"handlers": strings.Join(args, ","), "error": err})
				return err
			}
			return printJSON(cmd.OutOrStdout(), values)
		},
	}

	cmd.Flags().BoolVar(&settled, "settled", false, "Print every settlement instead of failing on the first error")
	return cmd
}
