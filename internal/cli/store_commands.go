package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/storage"
)

var errDestroyNotConfirmed = errors.New("refusing to delete the ledger without --yes")

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create and seed the ledger file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			repo, svc, seeded, err := SetupLedger(ctx, a.cfg, log.FromContext(ctx))
			if err != nil {
				return err
			}
			a.repo, a.svc = repo, svc
			defer func() {
				if cerr := a.close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			if !seeded {
				fmt.Fprintf(a.out, "Ledger already initialized at %s\n", a.cfg.DBPath)
				return nil
			}
			banks, err := svc.Banks(ctx)
			if err != nil {
				return err
			}
			categories, err := svc.Categories(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created ledger at %s with %d banks and %d categories\n",
				a.cfg.DBPath, len(banks), len(categories))
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the ledger lives and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := storage.Exists(a.cfg.DBPath)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.out, "No ledger at %s\n", a.cfg.DBPath)
				return nil
			}

			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				n, err := a.repo.CountTransactions(ctx)
				if err != nil {
					return err
				}
				version, _, err := storage.MigrationVersion(a.repo.Path())
				if err != nil {
					return err
				}
				s := a.svc.Summary()
				fmt.Fprintf(a.out, "Ledger:       %s\n", a.repo.Path())
				fmt.Fprintf(a.out, "Schema:       v%d\n", version)
				fmt.Fprintf(a.out, "Timezone:     %s\n", a.svc.Location())
				fmt.Fprintf(a.out, "Transactions: %d\n", n)
				fmt.Fprintf(a.out, "Income:       %s\n", core.FormatAmount(s.TotalIncome))
				fmt.Fprintf(a.out, "Expenses:     %s\n", core.FormatAmount(s.TotalExpenses))
				return nil
			})
		},
	}
}

func newDestroyCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the ledger file and everything in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errDestroyNotConfirmed
			}
			ctx := cmd.Context()

			ok, err := storage.Exists(a.cfg.DBPath)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.out, "No ledger at %s\n", a.cfg.DBPath)
				return nil
			}

			return a.withLedger(ctx, func(ctx context.Context) error {
				// The handle must be released before the file goes away.
				if err := a.close(); err != nil {
					return err
				}
				if err := storage.Destroy(a.cfg.DBPath); err != nil {
					log.FromContext(ctx).LogError(ctx, "Failed to delete ledger", err, log.ErrorTypeDatabase, log.OpTeardown,
						log.NewFields().With(log.FieldDBPath, a.cfg.DBPath))
					return err
				}
				a.svc.Teardown(ctx)
				fmt.Fprintf(a.out, "Deleted ledger at %s\n", a.cfg.DBPath)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}
