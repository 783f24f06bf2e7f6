package cli

import (
	"fmt"
	"os"

	"wedding-invitation/internal/application/guests"
	"wedding-invitation/internal/application/seed"
	"wedding-invitation/internal/application/settings"

	"github.com/spf13/cobra"
)

// NewSeedCommand imports settings and guests from a YAML file.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Import default settings and a guest list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := seed.Parse(f)
			if err != nil {
				return err
			}

			db, closeDB, err := openDB(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			svc := &seed.Service{DB: db, Guests: &guests.Service{DB: db}, Settings: &settings.Service{DB: db}}
			res, err := svc.Apply(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settings: %d, guests created: %d, skipped: %d\n", res.Settings, res.Created, res.Skipped)
			return nil
		},
	}
}
