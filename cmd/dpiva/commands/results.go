package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-dpiva/internal/config"
	"github.com/sirosfoundation/go-dpiva/internal/storage"
)

// results: list stored submission results.
func resultsCmd() *cobra.Command {
	var (
		filter  storage.ResultFilter
		since   time.Duration
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored submission results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.UsesMongoDB() {
				return fmt.Errorf("storage.mongodb.uri is not configured")
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(context.Background()) }()

			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}
			subs, err := store.ListResults(ctx, &filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(subs)
			}
			for _, s := range subs {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					s.CreatedAt.Format(time.RFC3339), s.Status, s.Target, s.ClientID, s.File)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.ClientID, "client", "", "only results of this client")
	cmd.Flags().StringVar(&filter.Target, "target", "", "only results for this target")
	cmd.Flags().StringVar(&filter.Status, "status", "", "only results with this status (ok, fail)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "maximum number of results")
	cmd.Flags().DurationVar(&since, "since", 0, "only results newer than this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "database timeout")
	return cmd
}
