package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/farhan-ahmed1/settle/pkg/client"
)

// Fetch returns the fetch command.
func Fetch(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "GET the configured endpoint and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.fetcher.Fetch(cmd.Context())
			if err != nil {
				var fetchErr *client.FetchError
				if errors.As(err, &fetchErr) {
					if printErr := printJSON(cmd.OutOrStdout(), fetchErr); printErr != nil {
						return printErr
					}
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}
