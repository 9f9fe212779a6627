package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet. The first row is the header; short rows
// are padded because excelize trims trailing empty cells.
func (xlsxLoader) Load(path string, opt Options) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	sheet := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return dataframe.DataFrame{}, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.SheetName, filepath.Base(path), strings.Join(sheets, ", "))
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return dataframe.DataFrame{}, fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s is empty", sheet)
	}
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			r = padded
		}
		records = append(records, r[:width])
	}
	df := dataframe.LoadRecords(records, dataframe.HasHeader(true), dataframe.DetectTypes(true))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load sheet %s: %w", sheet, df.Err)
	}
	return df, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
