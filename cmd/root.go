package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KaramelBytes/kpiscope/internal/chart"
	cfgpkg "github.com/KaramelBytes/kpiscope/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Style flags (override config if set)
	flagTheme    string
	flagFormat   string
	flagWidthIn  float64
	flagHeightIn float64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "kpiscope",
	Short: "kpiscope: KPI aggregation and trend charts for tabular exports",
	Long: `kpiscope reads CSV/TSV/XLSX exports, averages a KPI per group value
(overall, per weekday or per timestamp) and fits sliding-window trend lines,
writing one chart per partition.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.kpiscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "chart theme: ggplot|plain (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "image format: png|jpg|tif|svg|pdf|eps (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagWidthIn, "width", 0, "figure width in inches (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagHeightIn, "height", 0, "figure height in inches (overrides config)")
}

func loadConfig() {
	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		warn("Warning: failed to load config: %v", err)
		cfg = nil
		return
	}
	cfg = c
	slog.Debug("config loaded", "file", cfgFile, "save_dir", c.SaveDir, "format", c.ImageFormat, "theme", c.Theme)
}

// settings returns the loaded config, or an empty one when loading failed.
// Zero values mean "use the built-in default".
func settings() *cfgpkg.Global {
	if cfg == nil {
		return &cfgpkg.Global{}
	}
	return cfg
}

// buildStyle layers config values and then persistent flags over the default style.
func buildStyle() (chart.Style, error) {
	c := settings()
	st := chart.DefaultStyle()
	f := rootCmd.PersistentFlags()

	theme := c.Theme
	if f.Changed("theme") {
		theme = flagTheme
	}
	th, err := chart.ThemeByName(theme)
	if err != nil {
		return chart.Style{}, err
	}
	st.Theme = th

	if c.ImageFormat != "" {
		st.Format = c.ImageFormat
	}
	if f.Changed("format") {
		st.Format = flagFormat
	}
	st.Format = strings.TrimPrefix(strings.ToLower(st.Format), ".")

	if c.PlotWidthIn > 0 {
		st.WidthIn = c.PlotWidthIn
	}
	if c.PlotHeightIn > 0 {
		st.HeightIn = c.PlotHeightIn
	}
	if f.Changed("width") {
		st.WidthIn = flagWidthIn
	}
	if f.Changed("height") {
		st.HeightIn = flagHeightIn
	}
	if err := st.Validate(); err != nil {
		return chart.Style{}, err
	}
	slog.Debug("style", "theme", st.Theme.Name, "format", st.Format, "width_in", st.WidthIn, "height_in", st.HeightIn)
	return st, nil
}

// newViewer returns the desktop viewer when show is set, otherwise a no-op.
func newViewer(p *chart.Plotter, show bool) chart.Viewer {
	if !show {
		return chart.NopViewer{}
	}
	return &chart.SystemViewer{Plotter: p}
}

// writeOrPrint writes md to path, or prints it when path is empty.
func writeOrPrint(md, path, what string) error {
	if path == "" {
		fmt.Println(md)
		return nil
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	success("Wrote %s to %s", what, path)
	return nil
}
