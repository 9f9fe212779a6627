package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/KaramelBytes/kpiscope/internal/analysis"
	"github.com/fatih/color"
	"github.com/go-gota/gota/dataframe"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gonum.org/v1/gonum/floats"
)

// useColors honours NO_COLOR and dumb terminals; fatih/color also drops
// colour when stdout is not a TTY.
func useColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb" && !color.NoColor
}

func success(format string, args ...interface{}) {
	if useColors() {
		color.New(color.FgGreen).Fprintf(os.Stdout, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func warn(format string, args ...interface{}) {
	if useColors() {
		color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func printError(err error) {
	if useColors() {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "✗ Error:", err)
		return
	}
	fmt.Fprintln(os.Stderr, "✗ Error:", err)
}

// partitionTable writes one row per partition: key, group count and the
// range of the mean KPI.
func partitionTable(w io.Writer, kpi string, parts map[string]dataframe.DataFrame) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	rows := make([][]string, 0, len(parts))
	for _, key := range analysis.PartitionKeys(parts) {
		df := parts[key]
		lo, hi := "-", "-"
		if vals := finite(df.Col(kpi).Float()); len(vals) > 0 {
			lo = strconv.FormatFloat(floats.Min(vals), 'g', 4, 64)
			hi = strconv.FormatFloat(floats.Max(vals), 'g', 4, 64)
		}
		rows = append(rows, []string{key, strconv.Itoa(df.Nrow()), lo, hi})
	}
	table.Header([]string{"partition", "groups", "min mean " + kpi, "max mean " + kpi})
	_ = table.Bulk(rows)
	_ = table.Render()
}

func finite(vals []float64) []float64 {
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
