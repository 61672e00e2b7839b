package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricedrop/tracker-cli/internal/history"
	"github.com/pricedrop/tracker-cli/internal/model"
)

var (
	historyName  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded price observations for an item",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := history.NewStore(cfg.HistoryFile, cfg.History.MaxPoints).Load()
		if err != nil {
			return err
		}

		obs, ok := h[historyName]
		if !ok {
			return eris.Errorf("no recorded history for %q", historyName)
		}

		if historyLimit > 0 && len(obs) > historyLimit {
			obs = obs[len(obs)-historyLimit:]
		}

		formatObservations(os.Stdout, historyName, obs)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyName, "name", "", "item name (required)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show only the newest N observations (0 = all)")
	_ = historyCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(historyCmd)
}

// formatObservations writes an item's price series oldest-first.
func formatObservations(out io.Writer, name string, obs []model.Observation) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s\t(%d observations)\n", name, len(obs))
	_, _ = fmt.Fprintln(w, "RECORDED\tPRICE")
	_, _ = fmt.Fprintln(w, "--------\t-----")

	for _, o := range obs {
		_, _ = fmt.Fprintf(w, "%s\t%s\n",
			o.Timestamp.Format("2006-01-02 15:04"),
			p.Sprintf("₹%.2f", o.Price),
		)
	}
	_ = w.Flush()
}
