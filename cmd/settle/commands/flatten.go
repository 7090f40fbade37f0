package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farhan-ahmed1/settle/internal/transform"
)

// Flatten returns the flatten command.
func Flatten() *cobra.Command {
	return &cobra.Command{
		Use:     "flatten <json-array>",
		Short:   "Flatten a nested JSON array",
		Example: `  settle flatten '[1,2,3,[4,5,[6,7,[8,[9,[10]]]]]]'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input []interface{}
			if err := json.Unmarshal([]byte(args[0]), &input); err != nil {
				return fmt.Errorf("argument must be a JSON array: %w", err)
			}

			out, err := json.Marshal(transform.Flatten(input))
			if err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
