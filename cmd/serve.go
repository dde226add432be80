package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/stayscope/internal/bootstrap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(func(rt *bootstrap.Runtime) error {
				if Version != "dev" {
					rt.Config.Service.Version = Version
				}
				return rt.Serve(cmd.Context())
			})
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("stayscope version %s\n", Version)
		},
	}
}
