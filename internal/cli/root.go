package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"finledger/internal/config"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/storage"
)

// app carries what every command needs once the persistent pre-run has
// loaded configuration.
type app struct {
	out    io.Writer
	errOut io.Writer

	dbPath string

	cfg  *config.Config
	repo *storage.SQLiteRepository
	svc  *ledger.Service
}

// NewRootCommand builds the finledger command tree. Normal output goes to
// out, logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "finledger",
		Short: "A local ledger of income and expenses.",
		Long: `finledger records income and expense transactions tagged by bank and
category in a local SQLite file, and reports them filtered by date range,
bank, category or type, flat or grouped by bank or category.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			LoadEnvFile()
			cfg, err := LoadAndValidateConfig(a.dbPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger := SetupLogger(cfg, a.errOut)
			cmd.SetContext(log.WithContext(cmd.Context(), logger))
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Ledger file (overrides LEDGER_DB_PATH)")

	cmd.AddCommand(
		newInitCommand(a),
		newStatusCommand(a),
		newDestroyCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newRemoveCommand(a),
		newListCommand(a),
		newSummaryCommand(a),
		newBanksCommand(a),
		newCategoriesCommand(a),
		newCategoryCommand(a),
	)
	return cmd
}

// withLedger opens the existing ledger, runs fn and closes the store again.
// The ledger logs through the logger carried by ctx.
func (a *app) withLedger(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	repo, svc, err := OpenLedger(ctx, a.cfg, log.FromContext(ctx))
	if err != nil {
		return err
	}
	a.repo, a.svc = repo, svc
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx)
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}
