package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricedrop/tracker-cli/internal/history"
	"github.com/pricedrop/tracker-cli/internal/items"
	"github.com/pricedrop/tracker-cli/internal/model"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage the tracked item watchlist",
}

// -- items list --

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked items",
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := items.Load(cfg.ItemsFile)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No tracked items.")
			return nil
		}

		h, err := history.NewStore(cfg.HistoryFile, cfg.History.MaxPoints).Load()
		if err != nil {
			return err
		}

		formatItemsList(os.Stdout, list, h)
		return nil
	},
}

// -- items add --

var (
	itemsAddURL       string
	itemsAddName      string
	itemsAddSource    string
	itemsAddThreshold float64
)

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to the watchlist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		list, err := items.Load(cfg.ItemsFile)
		if err != nil {
			return err
		}

		src := model.ParseSource(itemsAddSource)
		if itemsAddSource == "" {
			detected, ok := model.DetectSource(itemsAddURL)
			if !ok {
				return eris.Errorf("cannot detect source from %q, pass --source", itemsAddURL)
			}
			src = detected
		}

		name := itemsAddName
		if name == "" {
			name, err = fetchTitle(ctx, itemsAddURL, src)
			if err != nil {
				return eris.Wrap(err, "resolve item name (pass --name to skip the fetch)")
			}
		}

		for _, it := range list {
			if it.Name == name {
				return eris.Errorf("an item named %q is already tracked", name)
			}
		}

		item := model.Item{
			Name:      name,
			URL:       itemsAddURL,
			Source:    src,
			Threshold: itemsAddThreshold,
		}
		item.Normalize()
		list = append(list, item)

		if err := items.Save(cfg.ItemsFile, list); err != nil {
			return err
		}

		zap.L().Info("item added",
			zap.String("name", item.Name),
			zap.String("source", string(item.Source)),
			zap.Float64("threshold", item.Threshold),
		)
		return nil
	},
}

// -- items remove --

var itemsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an item from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := items.Load(cfg.ItemsFile)
		if err != nil {
			return err
		}

		kept, removed := removeByName(list, args[0])
		if !removed {
			return eris.Errorf("no tracked item named %q", args[0])
		}

		if err := items.Save(cfg.ItemsFile, kept); err != nil {
			return err
		}

		zap.L().Info("item removed", zap.String("name", args[0]))
		return nil
	},
}

// -- items set-threshold --

var itemsSetThresholdCmd = &cobra.Command{
	Use:   "set-threshold <name> <price>",
	Short: "Set the target price for an item (0 disables)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "parse price %q", args[1])
		}

		list, err := items.Load(cfg.ItemsFile)
		if err != nil {
			return err
		}

		found := false
		for i := range list {
			if list[i].Name == args[0] {
				list[i].Threshold = threshold
				found = true
				break
			}
		}
		if !found {
			return eris.Errorf("no tracked item named %q", args[0])
		}

		if err := items.Save(cfg.ItemsFile, list); err != nil {
			return err
		}

		zap.L().Info("threshold updated",
			zap.String("name", args[0]),
			zap.Float64("threshold", threshold),
		)
		return nil
	},
}

func init() {
	itemsAddCmd.Flags().StringVar(&itemsAddURL, "url", "", "product page URL (required)")
	itemsAddCmd.Flags().StringVar(&itemsAddName, "name", "", "item name (default: extracted page title)")
	itemsAddCmd.Flags().StringVar(&itemsAddSource, "source", "", "platform: amazon, flipkart or myntra (default: detected from URL)")
	itemsAddCmd.Flags().Float64Var(&itemsAddThreshold, "threshold", 0, "target price to alert at (0 disables)")
	_ = itemsAddCmd.MarkFlagRequired("url")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsRemoveCmd)
	itemsCmd.AddCommand(itemsSetThresholdCmd)
	rootCmd.AddCommand(itemsCmd)
}

// fetchTitle fetches the product page once and extracts its title. Used
// when an item is added without an explicit name. One attempt only; a
// block or markup miss surfaces as an error rather than a retry loop.
func fetchTitle(ctx context.Context, rawURL string, src model.Source) (string, error) {
	body, err := buildFetchClient().Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	res, err := buildRegistry().For(src).Extract(body)
	if err != nil {
		return "", err
	}
	return res.Title, nil
}

// removeByName returns list without the named item and whether it was
// present.
func removeByName(list []model.Item, name string) ([]model.Item, bool) {
	out := make([]model.Item, 0, len(list))
	removed := false
	for _, it := range list {
		if it.Name == name {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return out, removed
}

// formatItemsList writes a tabular view of the watchlist with each item's
// most recent recorded price.
func formatItemsList(out io.Writer, list []model.Item, h model.History) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSOURCE\tTHRESHOLD\tLAST PRICE\tPOINTS")
	_, _ = fmt.Fprintln(w, "----\t------\t---------\t----------\t------")

	for _, it := range list {
		threshold := "-"
		if it.Threshold > 0 {
			threshold = p.Sprintf("₹%.2f", it.Threshold)
		}

		last := "-"
		if obs, ok := h.Last(it.Name); ok {
			last = p.Sprintf("₹%.2f", obs.Price)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			it.Name,
			it.Source,
			threshold,
			last,
			len(h[it.Name]),
		)
	}
	_ = w.Flush()
}
