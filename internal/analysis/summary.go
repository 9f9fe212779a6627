package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"
)

// PartitionsMarkdown renders the partition map as compact markdown tables.
func PartitionsMarkdown(kpi string, parts map[string]dataframe.DataFrame) string {
	var b strings.Builder
	b.WriteString("[KPI SUMMARY]\n")
	b.WriteString(fmt.Sprintf("KPI: %s\n", kpi))
	b.WriteString(fmt.Sprintf("Partitions: %d\n", len(parts)))
	for _, key := range PartitionKeys(parts) {
		df := parts[key]
		names := df.Names()
		b.WriteString(fmt.Sprintf("\n[%s plot of %s] (groups=%d)\n", kpi, safeCell(key), df.Nrow()))
		if wd, err := ParseWeekday(key); err == nil {
			b.WriteString(fmt.Sprintf("Weekday: %s (day %d of 7)\n", wd.Name, wd.Index))
		}
		if len(names) < 2 {
			continue
		}
		b.WriteString(fmt.Sprintf("| %s | mean %s |\n| --- | --- |\n", safeCell(names[0]), safeCell(names[1])))
		keys := keyLabels(df.Col(names[0]))
		means := df.Col(names[1]).Float()
		for i := range keys {
			b.WriteString(fmt.Sprintf("| %s | %.4g |\n", safeCell(keys[i]), means[i]))
		}
	}
	return b.String()
}

// TrendMarkdown summarises a fitted trend.
func TrendMarkdown(s Series, tr *Trend) string {
	var b strings.Builder
	b.WriteString("[TREND SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Series: %s (n=%d)\n", safeCell(s.Name), s.Len()))
	b.WriteString(fmt.Sprintf("Window size: %d\n", tr.WindowSize))
	b.WriteString(fmt.Sprintf("Slopes: %d\n", len(tr.Slopes)))
	if len(tr.Slopes) == 0 {
		b.WriteString("\n[NOTES]\n- window size is not smaller than the series; no slopes fitted\n")
		return b.String()
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	var up, down int
	for _, v := range tr.Slopes {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		switch {
		case v > 0:
			up++
		case v < 0:
			down++
		}
	}
	b.WriteString(fmt.Sprintf("Slope mean %.4g (min %.4g, max %.4g)\n", stat.Mean(tr.Slopes, nil), lo, hi))
	b.WriteString(fmt.Sprintf("Rising windows: %d, falling windows: %d\n", up, down))
	b.WriteString(fmt.Sprintf("Last slope (index %d): %.4g\n", len(tr.Slopes)-1+tr.WindowSize, tr.Slopes[len(tr.Slopes)-1]))
	return b.String()
}

func safeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
