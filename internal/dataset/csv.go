package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(path string, opt Options) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	df := dataframe.ReadCSV(f,
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
