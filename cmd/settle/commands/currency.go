package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/farhan-ahmed1/settle/internal/transform"
)

// Currency returns the currency command.
func Currency() *cobra.Command {
	return &cobra.Command{
		Use:   "currency <value>",
		Short: "Format a value as dollars",
		Long:  "Format a value as dollars. Arguments that do not parse as numbers format as $0.00.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value interface{} = args[0]
			if f, err := strconv.ParseFloat(args[0], 64); err == nil {
				value = f
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), transform.FormatCurrency(value))
			return err
		},
	}
}
