package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates or updates the schema.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := openDB(opts)
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
