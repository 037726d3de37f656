package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Boot the application and serve HTTP",
		Long: `Boot the application and serve HTTP on server.port until SIGINT or
SIGTERM, then shut down gracefully. Boot failures are logged and the
server starts with whatever routes did compile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application := newApp(opts, false)
			_ = application.Boot()
			return application.Run(ctx)
		},
	}
}
