package main

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/pricedrop/tracker-cli/internal/history"
	"github.com/pricedrop/tracker-cli/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export price history to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := history.NewStore(cfg.HistoryFile, cfg.History.MaxPoints).Load()
		if err != nil {
			return err
		}

		rows := flattenHistory(h)

		switch exportFormat {
		case "csv":
			err = exportCSV(exportOut, rows)
		case "xlsx":
			err = exportXLSX(exportOut, rows)
		default:
			return eris.Errorf("export: unknown format %q (use csv or xlsx)", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("history exported",
			zap.String("path", exportOut),
			zap.String("format", exportFormat),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

// exportRow is one flattened observation.
type exportRow struct {
	Item      string
	Price     float64
	Timestamp time.Time
}

// flattenHistory turns the per-item series into a flat row list, items in
// name order, observations in recorded order.
func flattenHistory(h model.History) []exportRow {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []exportRow
	for _, name := range names {
		for _, obs := range h[name] {
			rows = append(rows, exportRow{Item: name, Price: obs.Price, Timestamp: obs.Timestamp})
		}
	}
	return rows
}

func exportCSV(path string, rows []exportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"item", "price", "timestamp"}); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range rows {
		rec := []string{
			r.Item,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

func exportXLSX(path string, rows []exportRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("history")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hdr := sheet.AddRow()
	hdr.AddCell().Value = "item"
	hdr.AddCell().Value = "price"
	hdr.AddCell().Value = "timestamp"

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r.Item
		row.AddCell().SetFloat(r.Price)
		row.AddCell().Value = r.Timestamp.UTC().Format(time.RFC3339)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
