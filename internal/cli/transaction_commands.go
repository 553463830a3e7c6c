package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"finledger/internal/core"
	"finledger/internal/filter"
	"finledger/internal/ledger"
)

// transactionFlags are the editable fields shared by add and edit.
type transactionFlags struct {
	amount      string
	date        string
	typ         string
	bank        string
	category    string
	description string
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, e.g. 12.50 or 12,50")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Day of the transaction (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "Expense or Income")
	cmd.Flags().StringVarP(&f.bank, "bank", "b", "", "Bank id or name")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVar(&f.description, "description", "", "Optional note")
}

// apply overlays the flags the user set onto t.
func (f *transactionFlags) apply(ctx context.Context, cmd *cobra.Command, a *app, t *core.NewTransaction) error {
	changed := cmd.Flags().Changed
	if changed("amount") {
		amount, err := core.ParseAmount(f.amount)
		if err != nil {
			return err
		}
		t.Amount = amount
	}
	if changed("date") {
		d, err := core.ParseDay(f.date, a.svc.Location())
		if err != nil {
			return err
		}
		t.Date = d
	}
	if changed("type") {
		typ, err := core.ParseTransactionType(f.typ)
		if err != nil {
			return err
		}
		t.Type = typ
	}
	if changed("bank") {
		id, err := a.resolveBank(ctx, f.bank)
		if err != nil {
			return err
		}
		t.BankID = id
	}
	if changed("category") {
		id, err := a.resolveCategory(ctx, f.category)
		if err != nil {
			return err
		}
		t.CategoryID = id
	}
	if changed("description") {
		t.Description = strings.TrimSpace(f.description)
	}
	return nil
}

func newAddCommand(a *app) *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  finledger add --amount 50 --type Expense --bank Cash --category Food --date 2024-03-01
  finledger add -a 1200 -t Income -b BBVA -c Salary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				t := core.NewTransaction{Date: a.svc.Now()}
				if err := flags.apply(ctx, cmd, a, &t); err != nil {
					return err
				}
				id, err := a.svc.InsertTransaction(ctx, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added transaction %d: %s %s on %s\n",
					id, t.Type, core.FormatAmount(t.Amount), t.Date.Format(core.DayLayout))
				return nil
			})
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing transaction",
		Long: `Change an existing transaction. Fields not given keep their current
value. A transaction whose bank or category was deleted needs a new one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				row, err := a.repo.GetTransaction(ctx, id)
				if err != nil {
					return err
				}
				u := core.TransactionUpdate{ID: id, NewTransaction: core.NewTransaction{
					Amount:      row.Amount,
					Date:        row.Date,
					Description: row.Description.String,
					CategoryID:  row.CategoryID.Int64,
					BankID:      row.BankID.Int64,
					Type:        row.Type,
				}}
				if err := flags.apply(ctx, cmd, a, &u.NewTransaction); err != nil {
					return err
				}
				if err := a.svc.UpdateTransaction(ctx, u); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Updated transaction %d\n", id)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				if err := a.svc.DeleteTransaction(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted transaction %d\n", id)
				return nil
			})
		},
	}
}

// filterFlags mirror filter.Params.
type filterFlags struct {
	preset   string
	day      string
	from     string
	to       string
	bank     string
	category string
	typ      string
	order    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "none, today, singleDay, thisWeek or custom")
	cmd.Flags().StringVar(&f.day, "day", "", "Day for the singleDay preset (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.from, "from", "", "First day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.bank, "bank", "b", "", "Only this bank (id or name)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Only this category (id or name)")
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "Only Expense or Income")
	cmd.Flags().StringVarP(&f.order, "order", "o", "desc", "asc or desc by date")
}

func (f *filterFlags) params(ctx context.Context, a *app) (filter.Params, error) {
	var (
		p   filter.Params
		err error
	)
	loc := a.svc.Location()

	if f.preset != "" {
		if p.Preset, err = filter.ParsePreset(f.preset); err != nil {
			return p, err
		}
	}
	if f.day != "" {
		if p.Day, err = core.ParseDay(f.day, loc); err != nil {
			return p, err
		}
		if p.Preset == "" {
			p.Preset = filter.PresetSingleDay
		}
	}
	if f.from != "" {
		if p.Start, err = core.ParseDay(f.from, loc); err != nil {
			return p, err
		}
	}
	if f.to != "" {
		if p.End, err = core.ParseDay(f.to, loc); err != nil {
			return p, err
		}
	}
	if f.bank != "" {
		id, err := a.resolveBank(ctx, f.bank)
		if err != nil {
			return p, err
		}
		p.BankID = &id
	}
	if f.category != "" {
		id, err := a.resolveCategory(ctx, f.category)
		if err != nil {
			return p, err
		}
		p.CategoryID = &id
	}
	if f.typ != "" {
		typ, err := core.ParseTransactionType(f.typ)
		if err != nil {
			return p, err
		}
		p.Type = &typ
	}
	if p.Order, err = filter.ParseOrder(f.order); err != nil {
		return p, err
	}
	return p, nil
}

func newListCommand(a *app) *cobra.Command {
	var (
		flags filterFlags
		view  string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, flat or grouped",
		Example: `  finledger list --preset thisWeek
  finledger list --day 2024-01-01 --order asc
  finledger list --from 2024-01-01 --to 2024-01-31 --view bankGrouped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ledger.ParseViewMode(view)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				p, err := flags.params(ctx, a)
				if err != nil {
					return err
				}
				if err := a.svc.ApplyParams(ctx, p); err != nil {
					return err
				}
				if err := a.svc.SetViewMode(mode); err != nil {
					return err
				}

				st := a.svc.Snapshot()
				fmt.Fprintln(a.out, st.Filter.Title)
				if len(st.Transactions) == 0 {
					fmt.Fprintln(a.out, st.Filter.Message)
					return nil
				}
				if err := renderView(a.out, a.svc.Current()); err != nil {
					return err
				}
				return renderSummary(a.out, st.Summary)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&view, "view", string(ledger.ViewDefault), "default, bankGrouped or categoryGrouped")
	return cmd
}

func newSummaryCommand(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				p, err := flags.params(ctx, a)
				if err != nil {
					return err
				}
				if err := a.svc.ApplyParams(ctx, p); err != nil {
					return err
				}
				fmt.Fprintln(a.out, a.svc.Filter().Title)
				return renderSummary(a.out, a.svc.Summary())
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Err: fmt.Errorf("invalid transaction id %q", s)}
	}
	return id, nil
}
