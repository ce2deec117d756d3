package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// LoadCSV reads a header-keyed CSV from r. source is used in errors and logs.
func LoadCSV(r io.Reader, source string, opts Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, loadErr(source, 0, "", fmt.Errorf("read csv: %w", err))
	}
	if len(rows) == 0 {
		return nil, loadErr(source, 0, "", ErrEmpty)
	}
	return parseRows(source, rows[0], rows[1:], opts)
}
