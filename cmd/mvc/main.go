// Command mvc boots the dispatch framework over the sample application and
// serves it, or reports what the boot pipeline built.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/km-arc/go-mvc/app/math"
	"github.com/km-arc/go-mvc/framework/app"
	"github.com/km-arc/go-mvc/framework/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	config   string
	envFiles []string
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "mvc",
		Short: "Annotation-style request dispatch for Go",
		Long: `mvc scans the configured package for catalogued components and
controllers, wires them into a singleton container, compiles their
request mappings and dispatches HTTP requests to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c",
		config.Get("MVC_CONFIG", app.DefaultConfigLocation), "properties resource (.properties, .env, .yaml)")
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, ".env files overlaid on the environment")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log the boot pipeline")

	rootCmd.AddCommand(
		serveCmd(opts),
		routesCmd(opts),
		beansCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// newApp builds the application. Commands that only report on the boot
// pipeline stay quiet unless --verbose is set.
func newApp(opts *rootOptions, quiet bool) *app.Application {
	appOpts := []app.Option{
		app.WithConfigLocation(opts.config),
		app.WithEnvFiles(opts.envFiles...),
	}
	if quiet && !opts.verbose {
		appOpts = append(appOpts, app.WithLogger(zap.NewNop()))
	}
	return app.New(appOpts...)
}

// warn prints a warning message.
func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
