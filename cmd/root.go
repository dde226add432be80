// Package cmd implements the stayscope command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/stayscope/internal/bootstrap"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "stayscope",
		Short: "Hotel bookings search and reporting API",
		Long: `StayScope serves search, aggregation, suggestion and report queries over
hotel bookings mirrored from Postgres into Elasticsearch.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command; SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $CONFIG_PATH or ./config.yml)",
	)

	rootCmd.AddCommand(
		serveCommand(),
		ingestCommand(),
		syncCommand(),
		reportCommand(),
		migrateCommand(),
		versionCommand(),
	)
}

// withRuntime loads configuration for a command and releases it afterwards.
func withRuntime(fn func(rt *bootstrap.Runtime) error) error {
	rt, err := bootstrap.Init(cfgFile)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}
