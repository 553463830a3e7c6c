package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"finledger/internal/core"
	"finledger/internal/grouping"
	"finledger/internal/ledger"
)

const dash = "-"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderView(w io.Writer, v ledger.View) error {
	switch v.Mode {
	case ledger.ViewBankGrouped:
		return renderBankGroups(w, v.Banks)
	case ledger.ViewCategoryGrouped:
		return renderCategoryGroups(w, v.Categories)
	default:
		tw := newTable(w)
		writeTransactionHeader(tw)
		for _, tx := range v.Transactions {
			writeTransaction(tw, "", tx)
		}
		return tw.Flush()
	}
}

func renderBankGroups(w io.Writer, groups []grouping.BankGroup) error {
	tw := newTable(w)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\tincome %s\texpenses %s\n",
			g.Bank.Name, core.FormatAmount(g.IncomeAmount), core.FormatAmount(g.ExpenseAmount))
		for _, tx := range g.Transactions {
			writeTransaction(tw, "  ", tx)
		}
	}
	return tw.Flush()
}

func renderCategoryGroups(w io.Writer, groups []grouping.CategoryGroup) error {
	tw := newTable(w)
	for _, g := range groups {
		switch {
		case g.Unassigned():
			fmt.Fprintf(tw, "%s\tincome %s\texpenses %s\n",
				g.Category.Name, core.FormatAmount(g.IncomeAmount), core.FormatAmount(g.ExpenseAmount))
		case g.Category.Type == core.Income:
			fmt.Fprintf(tw, "%s\tincome %s\t\n", g.Category.Name, core.FormatAmount(g.IncomeAmount))
		default:
			fmt.Fprintf(tw, "%s\texpenses %s\t\n", g.Category.Name, core.FormatAmount(g.ExpenseAmount))
		}
		for _, tx := range g.Transactions {
			writeTransaction(tw, "  ", tx)
		}
	}
	return tw.Flush()
}

func writeTransactionHeader(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tBANK\tCATEGORY\tDESCRIPTION")
}

func writeTransaction(tw *tabwriter.Writer, indent string, tx core.TransformedTransaction) {
	bank, category := dash, dash
	if tx.Bank != nil {
		bank = tx.Bank.Name
	}
	if tx.Category != nil {
		category = tx.Category.Name
	}
	fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
		indent, tx.ID, tx.Date.Format(core.DayLayout), tx.Type, core.FormatAmount(tx.Amount),
		bank, category, tx.Description)
}

func renderSummary(w io.Writer, s core.Summary) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Income\t%s\n", core.FormatAmount(s.TotalIncome))
	fmt.Fprintf(tw, "Expenses\t%s\n", core.FormatAmount(s.TotalExpenses))
	fmt.Fprintf(tw, "Net\t%s\n", core.FormatAmount(s.Net()))
	return tw.Flush()
}

func renderBanks(w io.Writer, banks []core.Bank) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, b := range banks {
		fmt.Fprintf(tw, "%d\t%s\n", b.ID, b.Name)
	}
	return tw.Flush()
}

func renderCategories(w io.Writer, categories []core.Category) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE")
	for _, c := range categories {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Type)
	}
	return tw.Flush()
}
