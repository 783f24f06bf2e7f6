package cli

import (
	"errors"
	"fmt"
	"os"

	usersvc "wedding-invitation/internal/application/user"

	"github.com/spf13/cobra"
)

// NewCreateAdminCommand bootstraps the first super admin.
func NewCreateAdminCommand(opts *RootOptions) *cobra.Command {
	var username, password, fullName string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a super admin account if the username is free",
		Long: `Create a super admin account if the username is free.

The password may be passed with --password or the ADMIN_PASSWORD environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("--username and --password (or ADMIN_PASSWORD) are required")
			}
			if fullName == "" {
				fullName = username
			}
			db, closeDB, err := openDB(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			users := &usersvc.Service{DB: db}
			u, created, err := users.EnsureAdmin(cmd.Context(), username, password, fullName)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created super admin %q (id %d)\n", u.Username, u.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %q already exists; nothing changed\n", u.Username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name (defaults to username)")
	return cmd
}
