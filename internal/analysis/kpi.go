package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/KaramelBytes/kpiscope/internal/chart"
	"github.com/KaramelBytes/kpiscope/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Perspective selects how rows are partitioned before aggregation.
type Perspective string

const (
	Overall   Perspective = "overall"
	ByWeekday Perspective = "weekday"
	// ByDay partitions on the literal timestamp value, not the calendar date.
	ByDay Perspective = "day"
)

// PlotType selects line or scatter charts.
type PlotType string

const (
	LinePlot    PlotType = "l"
	ScatterPlot PlotType = "s"
)

// OverallKey is the single partition key under the overall perspective.
const OverallKey = "datetime"

// DefaultMaxShown is the partition count above which charts are never shown.
const DefaultMaxShown = 10

// KPIOptions controls CatchKPI.
type KPIOptions struct {
	DateCol      string
	KPICol       string
	PlotType     PlotType
	TickInterval int
	// GroupBy is required for the weekday and day perspectives. Under overall
	// it defaults to DateCol.
	GroupBy     string
	SaveDir     string
	Perspective Perspective
	Show        bool
	Save        bool
	// MaxShown suppresses display when there are more partitions than this.
	// 0 means DefaultMaxShown.
	MaxShown int
}

// DefaultKPIOptions returns the defaults of the kpi command.
func DefaultKPIOptions() KPIOptions {
	return KPIOptions{
		PlotType:     LinePlot,
		TickInterval: 1,
		SaveDir:      "./img",
		Perspective:  Overall,
		Show:         true,
		Save:         true,
		MaxShown:     DefaultMaxShown,
	}
}

// resolve validates opt against df and returns the effective group column.
func (opt KPIOptions) resolve(df dataframe.DataFrame) (string, error) {
	switch opt.Perspective {
	case Overall, ByWeekday, ByDay:
	default:
		return "", invalid("perspective", "%q is not one of overall, weekday, day", opt.Perspective)
	}
	groupBy := opt.GroupBy
	if groupBy == "" {
		if opt.Perspective != Overall {
			return "", invalid("groupby", "perspective %q needs a grouping column such as hour or minute", opt.Perspective)
		}
		groupBy = opt.DateCol
	}
	switch opt.PlotType {
	case LinePlot, ScatterPlot:
	default:
		return "", invalid("plot_type", "%q is not supported, use 'l' (line) or 's' (scatter)", opt.PlotType)
	}
	if opt.TickInterval < 1 {
		return "", invalid("tick_interval", "must be at least 1, got %d", opt.TickInterval)
	}
	if opt.MaxShown < 0 {
		return "", invalid("max_shown", "must not be negative, got %d", opt.MaxShown)
	}
	if opt.DateCol == "" {
		return "", invalid("date_col", "column name is required")
	}
	if opt.KPICol == "" {
		return "", invalid("kpi_col", "column name is required")
	}
	if groupBy == opt.KPICol {
		return "", invalid("groupby", "cannot group %q by itself", opt.KPICol)
	}
	if opt.DateCol == WeekdayCol || opt.KPICol == WeekdayCol {
		return "", invalid("columns", "%q is reserved for the derived weekday marker", WeekdayCol)
	}
	cols := []string{opt.DateCol, opt.KPICol}
	// The weekday column is derived after validation.
	if groupBy != WeekdayCol {
		cols = append(cols, groupBy)
	}
	for _, c := range cols {
		if err := requireColumn(df, c); err != nil {
			return "", err
		}
	}
	return groupBy, nil
}

func requireColumn(df dataframe.DataFrame, name string) error {
	for _, n := range df.Names() {
		if n == name {
			return nil
		}
	}
	return &FieldNotFoundError{Field: name, Available: df.Names()}
}

// CatchKPI partitions df by the chosen perspective and computes the mean KPI
// per group value within each partition. It renders one chart per
// partition, in ascending key order. It also adds the weekday column to *df.
// The partition map is returned even when nothing is saved or shown.
func CatchKPI(df *dataframe.DataFrame, opt KPIOptions, r chart.Renderer, v chart.Viewer) (map[string]dataframe.DataFrame, error) {
	if df == nil {
		return nil, invalid("dataset", "nil data frame")
	}
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: %w", df.Err)
	}
	groupBy, err := opt.resolve(*df)
	if err != nil {
		return nil, err
	}
	if opt.Save && r == nil {
		return nil, invalid("save", "saving requires a renderer")
	}
	maxShown := opt.MaxShown
	if maxShown == 0 {
		maxShown = DefaultMaxShown
	}

	if err := utils.EnsureDir(opt.SaveDir); err != nil {
		return nil, err
	}

	weekdays, err := deriveWeekdays(df.Col(opt.DateCol))
	if err != nil {
		return nil, err
	}
	mutated := df.Mutate(series.New(weekdays, series.String, WeekdayCol))
	if mutated.Err != nil {
		return nil, fmt.Errorf("add %s column: %w", WeekdayCol, mutated.Err)
	}
	*df = mutated

	var parts map[string]dataframe.DataFrame
	switch opt.Perspective {
	case ByWeekday:
		parts = splitBy(*df, WeekdayCol)
	case ByDay:
		parts = splitBy(*df, opt.DateCol)
	default:
		parts = map[string]dataframe.DataFrame{OverallKey: *df}
	}

	out := make(map[string]dataframe.DataFrame, len(parts))
	for key, sub := range parts {
		agg, err := groupMean(sub, groupBy, opt.KPICol)
		if err != nil {
			return nil, fmt.Errorf("partition %s: %w", key, err)
		}
		out[key] = agg
	}

	show := opt.Show && v != nil && len(out) <= maxShown
	for _, key := range PartitionKeys(out) {
		fig := kpiFigure(out[key], key, groupBy, opt)
		name := KPIFileName(opt.KPICol, key)
		if opt.Save {
			if _, err := r.Render(fig, filepath.Join(opt.SaveDir, name)); err != nil {
				return nil, fmt.Errorf("save %s: %w", name, err)
			}
		}
		if show {
			if err := v.Show(fig, name); err != nil {
				return nil, fmt.Errorf("show %s: %w", name, err)
			}
		}
	}
	return out, nil
}

// KPIFileName is the output file name (without extension) for one partition.
func KPIFileName(kpi, key string) string {
	return utils.SafeName(fmt.Sprintf("%s_by_%s", kpi, key))
}

// PartitionKeys returns the keys of parts in ascending order.
func PartitionKeys(parts map[string]dataframe.DataFrame) []string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deriveWeekdays(col series.Series) ([]string, error) {
	out := make([]string, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, fmt.Errorf("%s row %d: missing timestamp", col.Name, i+1)
		}
		t, err := ParseTimestamp(e.String())
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", col.Name, i+1, err)
		}
		out[i] = WeekdayOf(t).String()
	}
	return out, nil
}

// groupKey formats e without losing precision. Element.String prints floats
// with six decimals, which would merge distinct values.
func groupKey(e series.Element) string {
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}

// keyLabels renders every value of col with groupKey.
func keyLabels(col series.Series) []string {
	out := make([]string, col.Len())
	for i := range out {
		out[i] = groupKey(col.Elem(i))
	}
	return out
}

// rowGroups maps each distinct non-missing value of col to its row indices.
// Keys are returned in first-seen order.
func rowGroups(col series.Series) ([]string, map[string][]int) {
	var order []string
	groups := make(map[string][]int)
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		k := groupKey(e)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	return order, groups
}

// splitBy partitions df on the literal values of col. Subset keeps the
// original column types.
func splitBy(df dataframe.DataFrame, col string) map[string]dataframe.DataFrame {
	_, groups := rowGroups(df.Col(col))
	out := make(map[string]dataframe.DataFrame, len(groups))
	for k, idx := range groups {
		out[k] = df.Subset(idx)
	}
	return out
}

// groupMean returns a frame with one row per distinct value of by, ascending
// by that value, and the mean of kpi over the group's rows. Missing KPI values
// are skipped. Key values are taken from the source column so they keep
// their type and precision.
func groupMean(df dataframe.DataFrame, by, kpi string) (dataframe.DataFrame, error) {
	keyCol := df.Col(by)
	kpiVals := df.Col(kpi).Float()
	order, groups := rowGroups(keyCol)

	firsts := make([]int, 0, len(order))
	means := make([]float64, 0, len(order))
	for _, k := range order {
		idx := groups[k]
		vals := make([]float64, 0, len(idx))
		for _, i := range idx {
			if !math.IsNaN(kpiVals[i]) {
				vals = append(vals, kpiVals[i])
			}
		}
		m := math.NaN()
		if len(vals) > 0 {
			m = stat.Mean(vals, nil)
		}
		firsts = append(firsts, idx[0])
		means = append(means, m)
	}

	keys := keyCol.Subset(firsts)
	if keys.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("group keys: %w", keys.Err)
	}
	keys.Name = by
	agg := dataframe.New(keys, series.New(means, series.Float, kpi))
	if agg.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build aggregate: %w", agg.Err)
	}
	if agg.Nrow() > 1 {
		agg = agg.Arrange(dataframe.Sort(by))
		if agg.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("sort aggregate: %w", agg.Err)
		}
	}
	return agg, nil
}

func kpiFigure(agg dataframe.DataFrame, key, groupBy string, opt KPIOptions) chart.Figure {
	labels := keyLabels(agg.Col(groupBy))
	means := agg.Col(opt.KPICol).Float()
	pts := make([]chart.Point, len(means))
	for i, m := range means {
		pts[i] = chart.Point{X: float64(i), Y: m}
	}
	kind := chart.Line
	if opt.PlotType == ScatterPlot {
		kind = chart.Scatter
	}
	label := func(i int) string {
		if groupBy != opt.DateCol {
			return groupBy + strconv.Itoa(i+1)
		}
		return labels[i]
	}
	return chart.Figure{Panels: []chart.Panel{{
		Title:         fmt.Sprintf("%s plot of %s", opt.KPICol, key),
		XLabel:        groupBy,
		YLabel:        opt.KPICol,
		Layers:        []chart.Layer{{Kind: kind, Points: pts}},
		Ticks:         chart.IndexTicks(0, len(labels), opt.TickInterval, label),
		VerticalTicks: true,
	}}}
}
