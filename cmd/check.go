package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricedrop/tracker-cli/internal/journal"
	"github.com/pricedrop/tracker-cli/internal/track"
)

var checkName string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one tracking cycle now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initTracker(ctx, "check")
		if err != nil {
			return err
		}
		defer env.Close()

		outcomes, runErr := runTrackingCycle(ctx, env, checkName)
		if len(outcomes) > 0 {
			formatOutcomes(os.Stdout, outcomes)
		}
		return runErr
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkName, "name", "", "check only the item with this name")
	rootCmd.AddCommand(checkCmd)
}

// formatOutcomes writes a per-item summary table followed by cycle totals.
func formatOutcomes(out io.Writer, outcomes []track.Outcome) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ITEM\tSOURCE\tSTATUS\tPRICE\tPREV\tALERTS")
	_, _ = fmt.Fprintln(w, "----\t------\t------\t-----\t----\t------")

	var checked, alerted int
	for _, o := range outcomes {
		price, prev := "-", "-"
		if o.Status == journal.CheckOK {
			checked++
			price = p.Sprintf("₹%.2f", o.Price)
		}
		if o.HasPrev {
			prev = p.Sprintf("₹%.2f", o.PrevPrice)
		}
		if o.Dropped || o.HitTarget {
			alerted++
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Item.Name,
			o.Item.Source,
			o.Status,
			price,
			prev,
			alertMarks(o),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\n%d checked, %d alerted, %d total\n", checked, alerted, len(outcomes))
}

// alertMarks condenses an outcome's alert state into a short column value.
func alertMarks(o track.Outcome) string {
	var marks []string
	if o.Dropped {
		marks = append(marks, "drop")
	}
	if o.HitTarget {
		marks = append(marks, "target")
	}
	if len(marks) == 0 {
		return "-"
	}
	return strings.Join(marks, ",")
}
