package dataset

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jmoiron/sqlx"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQL reads every row of table through db. Columns carry the same names
// as the CSV header ("Launch Site", "class", ...). table must be a plain
// identifier; it is quoted, never formatted from user input.
func LoadSQL(ctx context.Context, db *sqlx.DB, table string, opts Options) (*Dataset, error) {
	if !identRe.MatchString(table) {
		return nil, loadErr(table, 0, "", fmt.Errorf("%w: table name %q", ErrInvalidValue, table))
	}

	rows, err := db.QueryxContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		return nil, loadErr(table, 0, "", fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, loadErr(table, 0, "", fmt.Errorf("columns: %w", err))
	}

	var data [][]string
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, loadErr(table, len(data)+1, "", fmt.Errorf("scan: %w", err))
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(table, 0, "", fmt.Errorf("iterate: %w", err))
	}

	return parseRows(table, header, data, opts)
}

// cellString renders a driver value the way it would appear in a CSV cell.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
