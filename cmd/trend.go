package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KaramelBytes/kpiscope/internal/analysis"
	"github.com/KaramelBytes/kpiscope/internal/chart"
	"github.com/KaramelBytes/kpiscope/internal/dataset"
	"github.com/KaramelBytes/kpiscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	trendColumn     string
	trendWindowSize int
	trendSave       bool
	trendSaveDir    string
	trendShow       bool
	trendDelimiter  string
	trendSheetName  string
	trendSheetIndex int
	trendOutputPath string
)

var trendCmd = &cobra.Command{
	Use:   "trend <file>",
	Short: "Fit sliding-window trend lines to a numeric column",
	Long: `Fit a least-squares line to each window of --window-size points, predict
the following points from it and chart the series with its predictions above
the slope sequence. A slope summary is printed or written with -o.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		fl := cmd.Flags()

		delim := c.Delimiter
		if fl.Changed("delimiter") {
			delim = trendDelimiter
		}
		d, err := dataset.ParseDelimiter(delim)
		if err != nil {
			return fmt.Errorf("invalid --delimiter: %w", err)
		}
		df, err := dataset.Load(path, dataset.Options{Delimiter: d, SheetName: trendSheetName, SheetIndex: trendSheetIndex})
		if err != nil {
			return err
		}
		s, err := dataset.Series(df, trendColumn)
		if err != nil {
			return err
		}

		opt := analysis.DefaultTrendOptions()
		if c.WindowSize > 0 {
			opt.WindowSize = c.WindowSize
		}
		if fl.Changed("window-size") {
			opt.WindowSize = trendWindowSize
		}
		if c.SaveDir != "" {
			opt.SaveDir = c.SaveDir
		}
		if fl.Changed("save-dir") {
			opt.SaveDir = trendSaveDir
		}
		opt.Save = trendSave
		opt.Show = trendShow
		slog.Debug("trend", "column", s.Name, "points", s.Len(), "window_size", opt.WindowSize)

		tr, err := analysis.FitTrend(s.Values, opt.WindowSize)
		if err != nil {
			return err
		}
		if opt.Save || opt.Show {
			style, err := buildStyle()
			if err != nil {
				return err
			}
			p, err := chart.NewPlotter(style)
			if err != nil {
				return err
			}
			if opt.Save {
				if err := utils.EnsureDir(opt.SaveDir); err != nil {
					return err
				}
			}
			if err := analysis.PlotFittedTrend(s, tr, opt, p, newViewer(p, opt.Show)); err != nil {
				return err
			}
			if opt.Save {
				name := analysis.TrendFileName(s.Name, opt.WindowSize) + "." + style.Format
				success("Saved trend chart to %s", filepath.Join(opt.SaveDir, name))
			}
		}
		return writeOrPrint(analysis.TrendMarkdown(s, tr), trendOutputPath, "trend summary")
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().StringVar(&trendColumn, "column", "", "numeric column to analyse (required)")
	trendCmd.Flags().IntVar(&trendWindowSize, "window-size", 10, "points per regression window")
	trendCmd.Flags().BoolVar(&trendSave, "save", false, "write the chart image to --save-dir")
	trendCmd.Flags().StringVar(&trendSaveDir, "save-dir", "./img", "directory for the chart image (created if absent)")
	trendCmd.Flags().BoolVar(&trendShow, "show", false, "open the chart in the system image viewer")
	trendCmd.Flags().StringVar(&trendDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (auto-detect if omitted)")
	trendCmd.Flags().StringVar(&trendSheetName, "sheet-name", "", "XLSX: sheet name to read")
	trendCmd.Flags().IntVar(&trendSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	trendCmd.Flags().StringVarP(&trendOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	_ = trendCmd.MarkFlagRequired("column")
}
