package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/kpiscope/internal/analysis"
	"github.com/KaramelBytes/kpiscope/internal/chart"
	"github.com/KaramelBytes/kpiscope/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	kpiDateCol      string
	kpiCol          string
	kpiPlotType     string
	kpiTickInterval int
	kpiGroupBy      string
	kpiSaveDir      string
	kpiPerspective  string
	kpiShow         bool
	kpiSave         bool
	kpiMaxShown     int
	kpiDelimiter    string
	kpiSheetName    string
	kpiSheetIndex   int
	kpiOutputPath   string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi <file>",
	Short: "Average a KPI per group value and chart each partition",
	Long: `Partition a dataset overall, by weekday or by timestamp, average the KPI
column per group value in each partition and write one chart per partition.
A markdown summary of the aggregated partitions is printed or written with -o.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		fl := cmd.Flags()

		delim := c.Delimiter
		if fl.Changed("delimiter") {
			delim = kpiDelimiter
		}
		d, err := dataset.ParseDelimiter(delim)
		if err != nil {
			return fmt.Errorf("invalid --delimiter: %w", err)
		}
		df, err := dataset.Load(path, dataset.Options{Delimiter: d, SheetName: kpiSheetName, SheetIndex: kpiSheetIndex})
		if err != nil {
			return err
		}
		slog.Debug("dataset loaded", "path", path, "rows", df.Nrow(), "columns", df.Names())

		opt := analysis.DefaultKPIOptions()
		opt.DateCol = kpiDateCol
		opt.KPICol = kpiCol
		opt.GroupBy = kpiGroupBy
		if c.PlotType != "" {
			opt.PlotType = analysis.PlotType(c.PlotType)
		}
		if fl.Changed("plot-type") {
			opt.PlotType = analysis.PlotType(kpiPlotType)
		}
		if c.TickInterval > 0 {
			opt.TickInterval = c.TickInterval
		}
		if fl.Changed("tick-interval") {
			opt.TickInterval = kpiTickInterval
		}
		if c.SaveDir != "" {
			opt.SaveDir = c.SaveDir
		}
		if fl.Changed("save-dir") {
			opt.SaveDir = kpiSaveDir
		}
		if c.Perspective != "" {
			opt.Perspective = analysis.Perspective(c.Perspective)
		}
		if fl.Changed("perspective") {
			opt.Perspective = analysis.Perspective(kpiPerspective)
		}
		if c.MaxShownPartitions > 0 {
			opt.MaxShown = c.MaxShownPartitions
		}
		if fl.Changed("max-shown") {
			opt.MaxShown = kpiMaxShown
		}
		opt.Show = kpiShow
		opt.Save = kpiSave

		style, err := buildStyle()
		if err != nil {
			return err
		}
		p, err := chart.NewPlotter(style)
		if err != nil {
			return err
		}
		parts, err := analysis.CatchKPI(&df, opt, p, newViewer(p, opt.Show))
		if err != nil {
			return err
		}
		slog.Debug("kpi partitions", "count", len(parts), "perspective", opt.Perspective)

		if opt.Save {
			success("Saved %d chart(s) to %s", len(parts), opt.SaveDir)
		}
		if opt.Show && opt.MaxShown > 0 && len(parts) > opt.MaxShown {
			warn("%d partitions exceed --max-shown %d; charts were not displayed", len(parts), opt.MaxShown)
		}
		if err := writeOrPrint(analysis.PartitionsMarkdown(opt.KPICol, parts), kpiOutputPath, "KPI summary"); err != nil {
			return err
		}
		if kpiOutputPath != "" {
			partitionTable(os.Stdout, opt.KPICol, parts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kpiCmd)
	kpiCmd.Flags().StringVar(&kpiDateCol, "date-col", "", "timestamp column (required)")
	kpiCmd.Flags().StringVar(&kpiCol, "kpi-col", "", "numeric KPI column (required)")
	kpiCmd.Flags().StringVar(&kpiPlotType, "plot-type", "l", "chart type: l (line) | s (scatter)")
	kpiCmd.Flags().IntVar(&kpiTickInterval, "tick-interval", 1, "label every N-th group on the x axis")
	kpiCmd.Flags().StringVar(&kpiGroupBy, "group-by", "", "column whose values are averaged over (required for weekday/day)")
	kpiCmd.Flags().StringVar(&kpiSaveDir, "save-dir", "./img", "directory for chart images (created if absent)")
	kpiCmd.Flags().StringVar(&kpiPerspective, "perspective", "overall", "partitioning: overall | weekday | day")
	kpiCmd.Flags().BoolVar(&kpiShow, "show", false, "open each chart in the system image viewer")
	kpiCmd.Flags().BoolVar(&kpiSave, "save", true, "write chart images to --save-dir")
	kpiCmd.Flags().IntVar(&kpiMaxShown, "max-shown", analysis.DefaultMaxShown, "do not display charts when there are more partitions than this")
	kpiCmd.Flags().StringVar(&kpiDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (auto-detect if omitted)")
	kpiCmd.Flags().StringVar(&kpiSheetName, "sheet-name", "", "XLSX: sheet name to read")
	kpiCmd.Flags().IntVar(&kpiSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	kpiCmd.Flags().StringVarP(&kpiOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	_ = kpiCmd.MarkFlagRequired("date-col")
	_ = kpiCmd.MarkFlagRequired("kpi-col")
}
