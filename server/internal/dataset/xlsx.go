package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads opts.Sheet (or the first sheet) of the workbook at path.
// The first row is the header.
func LoadXLSX(path string, opts Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, loadErr(path, 0, "", fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, loadErr(path, 0, "", ErrEmpty)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, loadErr(path, 0, "", fmt.Errorf("read sheet %q: %w", sheet, err))
	}
	if len(rows) == 0 {
		return nil, loadErr(path, 0, "", ErrEmpty)
	}
	return parseRows(path, rows[0], rows[1:], opts)
}
