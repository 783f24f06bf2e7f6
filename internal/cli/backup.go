package cli

import (
	"fmt"

	backupsvc "wedding-invitation/internal/application/backup"

	"github.com/spf13/cobra"
)

func backupService(opts *RootOptions) (*backupsvc.Service, func(), error) {
	db, closeDB, err := openDB(opts)
	if err != nil {
		return nil, nil, err
	}
	return &backupsvc.Service{DB: db, Dir: opts.Config.BackupDir}, closeDB, nil
}

// NewBackupCommand writes a snapshot into BACKUP_DIR.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the sqlite database into BACKUP_DIR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := backupService(opts)
			if err != nil {
				return err
			}
			defer closeDB()
			snap, err := svc.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", snap.Filename, snap.Size)
			return nil
		},
	}
}

// NewRestoreCommand replaces guest-facing tables from a snapshot in BACKUP_DIR.
func NewRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Restore rsvps, wishes, guests and settings from a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := backupService(opts)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := svc.Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored from %s\n", args[0])
			return nil
		},
	}
}
