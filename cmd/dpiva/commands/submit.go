package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-dpiva/internal/config"
	"github.com/sirosfoundation/go-dpiva/internal/storage"
	"github.com/sirosfoundation/go-dpiva/pkg/declaration"
	"github.com/sirosfoundation/go-dpiva/pkg/security"
	"github.com/sirosfoundation/go-dpiva/pkg/submission"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// submit FILE|BUNDLE.zip...: submit declarations and record the results.
func submitCmd() *cobra.Command {
	var (
		targetName string
		clientID   string
	)
	cmd := &cobra.Command{
		Use:   "submit FILE|BUNDLE.zip...",
		Short: "Submit declaration files or zip bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := transport.ParseTarget(targetName)
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if _, ok := cfg.Target(target); !ok {
				return fmt.Errorf("target %s is not configured", target)
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = a.store.Close(closeCtx)
			}()

			items := buildItems(collectDeclarations(args), a.credentials, clientID)
			logger.Info("submitting declarations", "count", len(items), "target", target)

			results := a.submitter.SubmitBatch(ctx, target, items, cfg.Webservice.Concurrency)

			failed := 0
			for _, r := range results {
				if err := a.store.SaveResult(ctx, storage.FromResult(r)); err != nil {
					logger.Error("failed to store result", "result_id", r.ID, "error", err)
				}
				printResult(cmd.OutOrStdout(), r)
				if r.Failed() {
					failed++
				}
			}

			logger.Info("submission finished", "submitted", len(results), "failed", failed)
			if failed > 0 {
				return ErrSubmissionsFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetName, "target", "t", transport.TargetTest.String(), "test or production")
	cmd.Flags().StringVar(&clientID, "client", "", "client id to file as (default: resolved from the declaration NIF)")
	return cmd
}

// collectDeclarations loads every file and bundle. Unreadable inputs are
// kept with Err set so they are reported like any other failure.
func collectDeclarations(paths []string) []*declaration.Declaration {
	var decls []*declaration.Declaration
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".zip") {
			bundle, err := declaration.LoadBundle(p)
			if err != nil {
				decls = append(decls, &declaration.Declaration{Name: p, Err: err})
				continue
			}
			decls = append(decls, bundle...)
			continue
		}
		d, err := declaration.Load(p)
		if err != nil {
			d = &declaration.Declaration{Name: p, Err: err}
		}
		decls = append(decls, d)
	}
	return decls
}

// buildItems pairs each declaration with the client filing it. Without an
// explicit client the NIF of the declaration selects the credentials; an
// unknown NIF is kept as the client id so the envelope stage reports it.
func buildItems(decls []*declaration.Declaration, creds *security.CredentialMap, clientID string) []submission.Item {
	items := make([]submission.Item, 0, len(decls))
	for _, d := range decls {
		id := clientID
		if id == "" && d.Info != nil {
			id = d.Info.NIF
			if resolved, err := creds.ResolveClient(d.Info.NIF); err == nil {
				id = resolved
			}
		}
		items = append(items, submission.Item{ClientID: id, Declaration: d})
	}
	return items
}

func printResult(w io.Writer, r *submission.Result) {
	var detail string
	switch {
	case r.Failed():
		detail = strings.Join(r.ErrorList, "; ")
	case r.Stage(submission.StageResponse) != nil:
		detail = strings.ReplaceAll(r.Stage(submission.StageResponse).Data, "\n", ", ")
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", strings.ToUpper(string(r.Status)), r.File, r.ClientID, detail)
	for _, warning := range r.WarningList {
		fmt.Fprintf(w, "\twarning: %s\n", warning)
	}
}
