package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricedrop/tracker-cli/internal/journal"
)

var (
	runsChecks bool
	runsItem   string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded tracking cycles",
	Long:  "Lists recent cycles from the check journal, or individual item checks with --checks.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		jrnl, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "open journal")
		}
		defer jrnl.Close() //nolint:errcheck

		if runsChecks {
			checks, err := jrnl.RecentChecks(ctx, runsItem, runsLimit)
			if err != nil {
				return eris.Wrap(err, "list checks")
			}
			if len(checks) == 0 {
				fmt.Fprintln(os.Stderr, "No checks recorded.")
				return nil
			}
			formatChecks(os.Stdout, checks)
			return nil
		}

		cycles, err := jrnl.RecentCycles(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "list cycles")
		}
		if len(cycles) == 0 {
			fmt.Fprintln(os.Stderr, "No cycles recorded.")
			return nil
		}
		formatCycles(os.Stdout, cycles)
		return nil
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsChecks, "checks", false, "list individual item checks instead of cycles")
	runsCmd.Flags().StringVar(&runsItem, "item", "", "filter checks by item name (with --checks)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max number of rows to display")
	rootCmd.AddCommand(runsCmd)
}

// formatCycles writes a tabular list of cycles to w.
func formatCycles(out io.Writer, cycles []journal.Cycle) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tITEMS\tCHECKED\tALERTED")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t-----\t-------\t-------")

	for _, c := range cycles {
		dur := "running"
		if c.FinishedAt != nil {
			dur = c.FinishedAt.Sub(c.StartedAt).Round(time.Second).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			truncateID(c.ID),
			c.StartedAt.Format("2006-01-02 15:04"),
			dur,
			c.ItemCount,
			c.Checked,
			c.Alerted,
		)
	}
	_ = w.Flush()
}

// formatChecks writes a tabular list of item checks to w.
func formatChecks(out io.Writer, checks []journal.Check) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHECKED\tITEM\tSOURCE\tSTATUS\tPRICE\tALERTS\tCYCLE")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t------\t-----\t------\t-----")

	for _, c := range checks {
		price := "-"
		if c.Status == journal.CheckOK {
			price = p.Sprintf("₹%.2f", c.Price)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.CheckedAt.Format("2006-01-02 15:04"),
			c.Item,
			c.Source,
			c.Status,
			price,
			checkMarks(c),
			truncateID(c.CycleID),
		)
	}
	_ = w.Flush()
}

// checkMarks condenses a check's alert flags into a short column value.
func checkMarks(c journal.Check) string {
	switch {
	case c.Dropped && c.HitTarget:
		return "drop,target"
	case c.Dropped:
		return "drop"
	case c.HitTarget:
		return "target"
	}
	return "-"
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
