package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekdayCol is the column CatchKPI adds to the dataset.
const WeekdayCol = "weekday"

// Weekday pairs a 1-based weekday index (Monday = 1 ... Sunday = 7) with its name.
type Weekday struct {
	Index int
	Name  string
}

func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	return Weekday{Index: (int(wd)+6)%7 + 1, Name: wd.String()}
}

// String is the partition key form, e.g. "1_Monday".
func (w Weekday) String() string {
	return strconv.Itoa(w.Index) + "_" + w.Name
}

// ParseWeekday reverses Weekday.String. The name must match the index.
func ParseWeekday(s string) (Weekday, error) {
	idx, name, ok := strings.Cut(s, "_")
	if !ok {
		return Weekday{}, fmt.Errorf("malformed weekday marker %q", s)
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 1 || i > 7 || time.Weekday(i%7).String() != name {
		return Weekday{}, fmt.Errorf("malformed weekday marker %q", s)
	}
	return Weekday{Index: i, Name: name}, nil
}
