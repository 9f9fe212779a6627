// Package dataset loads tabular KPI exports into gota data frames.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/kpiscope/internal/analysis"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Options controls how a file is read.
type Options struct {
	// Delimiter for delimited text. If 0, it is sniffed from the extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
}

// Loader reads one family of file formats.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (dataframe.DataFrame, error)
}

var registry []Loader

// Register adds a loader; later registrations do not override earlier ones.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader accepts the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load picks a loader by file name and reads path into a data frame.
func Load(path string, opt Options) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open dataset: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			df, err := l.Load(path, opt)
			if err != nil {
				return dataframe.DataFrame{}, err
			}
			if df.Err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("load %s: %w", path, df.Err)
			}
			return df, nil
		}
	}
	return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Series extracts a numeric column as a named series for the trend estimator.
func Series(df dataframe.DataFrame, col string) (analysis.Series, error) {
	names := df.Names()
	found := false
	for _, n := range names {
		if n == col {
			found = true
			break
		}
	}
	if !found {
		return analysis.Series{}, &analysis.FieldNotFoundError{Field: col, Available: names}
	}
	s := df.Col(col)
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
	default:
		return analysis.Series{}, fmt.Errorf("column %q is %s, not numeric", col, s.Type())
	}
	return analysis.Series{Name: col, Values: s.Float()}, nil
}

// ParseDelimiter maps a flag value to a delimiter rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
