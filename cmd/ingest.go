package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/stayscope/internal/bootstrap"
)

func ingestCommand() *cobra.Command {
	var resync bool

	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Clean a bookings CSV export and load it into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(rt *bootstrap.Runtime) error {
				ctx := cmd.Context()

				db, repo, err := rt.Database(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()

				res, err := rt.Loader(repo).LoadFile(ctx, args[0])
				if err != nil {
					return err
				}
				cmd.Printf("Loaded %d of %d rows in %s\n", res.Inserted, res.Rows, res.Duration.Round(time.Millisecond))
				for col, n := range res.Clamped {
					cmd.Printf("  %-32s %d outliers suppressed\n", col, n)
				}

				if !resync {
					return nil
				}
				gw, err := rt.Gateway(ctx)
				if err != nil {
					return err
				}
				if _, err = rt.EnsureIndex(ctx, gw); err != nil {
					return err
				}
				syncer, err := rt.Syncer(repo, gw)
				if err != nil {
					return err
				}
				sres, err := syncer.Run(ctx)
				cmd.Printf("Indexed %d documents (%d failed)\n", sres.Indexed, sres.Failed)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&resync, "sync", false, "resync the search index after loading")
	return cmd
}

func syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Resync every booking from Postgres into the search index once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(func(rt *bootstrap.Runtime) error {
				ctx := cmd.Context()

				gw, err := rt.Gateway(ctx)
				if err != nil {
					return err
				}
				if _, err = rt.EnsureIndex(ctx, gw); err != nil {
					return err
				}

				db, repo, err := rt.Database(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()

				syncer, err := rt.Syncer(repo, gw)
				if err != nil {
					return err
				}
				res, err := syncer.Run(ctx)
				cmd.Printf("Run %s: %d rows, %d indexed, %d failed, %d chunk errors in %s\n",
					res.RunID, res.Rows, res.Indexed, res.Failed, res.ChunkErrors, res.Duration.Round(time.Millisecond))
				return err
			})
		},
	}
}
