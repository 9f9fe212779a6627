package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
)

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		day  string
		want Weekday
	}{
		{"2024-01-01", Weekday{1, "Monday"}},
		{"2024-01-03", Weekday{3, "Wednesday"}},
		{"2024-01-06", Weekday{6, "Saturday"}},
		{"2024-01-07", Weekday{7, "Sunday"}},
	}
	for _, c := range cases {
		d, err := time.Parse("2006-01-02", c.day)
		if err != nil {
			t.Fatal(err)
		}
		if got := WeekdayOf(d); got != c.want {
			t.Errorf("WeekdayOf(%s) = %+v, want %+v", c.day, got, c.want)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	w, err := ParseWeekday(Weekday{7, "Sunday"}.String())
	if err != nil || w != (Weekday{7, "Sunday"}) {
		t.Fatalf("ParseWeekday round trip = %+v, %v", w, err)
	}
	for _, bad := range []string{"Sunday", "0_Sunday", "x_Monday", "1_Sunday", "8_Monday", "2024-01-01 10:00"} {
		if _, err := ParseWeekday(bad); err == nil {
			t.Errorf("ParseWeekday(%q) should fail", bad)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2024-01-01T10:00:00Z", "2024-01-01 10:00:00", "2024-01-01 10:00", "2024-01-01",
		"2024/01/01 10:00", "1/2/2024 10:00", "20240101",
	} {
		if _, err := ParseTimestamp(s); err != nil {
			t.Errorf("ParseTimestamp(%q): %v", s, err)
		}
	}
	if _, err := ParseTimestamp("not a date"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPartitionsMarkdown(t *testing.T) {
	df := loadFixture(t)
	opt := weekdayOpts(t.TempDir())
	opt.Save = false
	parts, err := CatchKPI(&df, opt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	md := PartitionsMarkdown("kpi", parts)
	for _, want := range []string{
		"[KPI SUMMARY]", "Partitions: 2", "[kpi plot of 1_Monday] (groups=4)",
		"Weekday: Monday (day 1 of 7)", "Weekday: Tuesday (day 2 of 7)",
		"| hour | mean kpi |", "| 0 | 15 |", "| 2 | 1.5 |", "| 5 | 100 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "1_Monday") > strings.Index(md, "2_Tuesday") {
		t.Errorf("partitions out of order")
	}

	df = loadFixture(t)
	opt = weekdayOpts(t.TempDir())
	opt.Save, opt.Perspective, opt.GroupBy = false, Overall, ""
	parts, err = CatchKPI(&df, opt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if md := PartitionsMarkdown("kpi", parts); strings.Contains(md, "Weekday:") {
		t.Errorf("overall summary should not carry a weekday line:\n%s", md)
	}

	empty := PartitionsMarkdown("kpi", map[string]dataframe.DataFrame{})
	if !strings.Contains(empty, "Partitions: 0") {
		t.Errorf("unexpected empty summary: %s", empty)
	}
}

func TestTrendMarkdown(t *testing.T) {
	s := Series{Name: "cpu", Values: linearSeries(12)}
	tr, err := FitTrend(s.Values, 4)
	if err != nil {
		t.Fatal(err)
	}
	md := TrendMarkdown(s, tr)
	for _, want := range []string{"Series: cpu (n=12)", "Slopes: 8", "Slope mean 3", "Rising windows: 8, falling windows: 0", "Last slope (index 11): 3"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	tr, _ = FitTrend(s.Values, 40)
	if md := TrendMarkdown(s, tr); !strings.Contains(md, "no slopes fitted") {
		t.Errorf("expected note for empty trend:\n%s", md)
	}
}
