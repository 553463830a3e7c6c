package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"finledger/internal/core"
)

var (
	errUnknownBank     = errors.New("unknown bank")
	errUnknownCategory = errors.New("unknown category")
)

func newBanksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List banks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				banks, err := a.svc.Banks(ctx)
				if err != nil {
					return err
				}
				return renderBanks(a.out, banks)
			})
		},
	}
}

func newCategoriesCommand(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				var only *core.TransactionType
				if typ != "" {
					t, err := core.ParseTransactionType(typ)
					if err != nil {
						return err
					}
					only = &t
				}
				categories, err := a.svc.Categories(ctx, only)
				if err != nil {
					return err
				}
				return renderCategories(a.out, categories)
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only Expense or Income categories")
	return cmd
}

func newCategoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(newCategoryAddCommand(a))
	return cmd
}

func newCategoryAddCommand(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category (letters and spaces, at most 25 characters)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTransactionType(typ)
			if err != nil {
				return err
			}
			name := args[0]
			if err := core.ValidateCategoryName(name); err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context) error {
				id, err := a.svc.InsertCategory(ctx, name, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s category %d: %s\n", t, id, name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Expense or Income")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// resolveBank accepts a numeric id or a case-insensitive bank name.
func (a *app) resolveBank(ctx context.Context, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	banks, err := a.svc.Banks(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range banks {
		if strings.EqualFold(b.Name, s) {
			return b.ID, nil
		}
	}
	return 0, &core.ValidationError{Field: "bank", Err: fmt.Errorf("%w %q", errUnknownBank, s)}
}

// resolveCategory accepts a numeric id or a case-insensitive category name.
func (a *app) resolveCategory(ctx context.Context, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	categories, err := a.svc.Categories(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, s) {
			return c.ID, nil
		}
	}
	return 0, &core.ValidationError{Field: "category", Err: fmt.Errorf("%w %q", errUnknownCategory, s)}
}
