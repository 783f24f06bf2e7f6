package cli

import (
	"os/signal"
	"syscall"

	"wedding-invitation/bootstrap"

	"github.com/spf13/cobra"
)

// NewServeCommand runs the HTTP server until interrupted.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				opts.Config.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return bootstrap.Serve(ctx, opts.Config)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default PORT)")
	return cmd
}
