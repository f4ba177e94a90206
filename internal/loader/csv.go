// Package loader reads trade pair, holding and date tables from CSV.
// Headers must carry the exact column names; a missing column or an unparsable
// cell fails the whole read before any row is returned.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pair-performance-lab/internal/domain"
)

// timeLayouts are tried in order for timestamp cells.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// table is a parsed CSV with a column index.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.MissingColumnsError(required)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, domain.MissingColumnsError(missing)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return &table{index: index, rows: rows}, nil
}

// cell returns the trimmed value of column col in row, or "" when the row is short.
func (t *table) cell(row []string, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return "", ok
	}
	return strings.TrimSpace(row[i]), true
}

// rowParser accumulates the first parse error of a row.
type rowParser struct {
	t   *table
	row []string
	n   int
	err error
}

func (p *rowParser) fail(col, reason string) {
	if p.err == nil {
		p.err = &domain.SchemaError{Row: p.n, Column: col, Reason: reason}
	}
}

func (p *rowParser) str(col string) string {
	v, _ := p.t.cell(p.row, col)
	return v
}

func (p *rowParser) float(col string) float64 {
	v := p.str(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(col, fmt.Sprintf("not a number: %q", v))
	}
	return f
}

// optionalFloat parses col when the column is present and non-empty.
func (p *rowParser) optionalFloat(col string) float64 {
	v, present := p.t.cell(p.row, col)
	if !present || v == "" {
		return 0
	}
	return p.float(col)
}

func (p *rowParser) int(col string) int {
	v := p.str(col)
	i, err := strconv.Atoi(v)
	if err != nil {
		// producers sometimes write integral columns as floats
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			p.fail(col, fmt.Sprintf("not an integer: %q", v))
			return 0
		}
		return int(f)
	}
	return i
}

func (p *rowParser) decimal(col string) decimal.Decimal {
	v := p.str(col)
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(col, fmt.Sprintf("not a decimal: %q", v))
	}
	return d
}

func (p *rowParser) time(col string) time.Time {
	v := p.str(col)
	t, err := ParseTime(v)
	if err != nil {
		p.fail(col, err.Error())
	}
	return t
}

// ParseTime parses a timestamp cell in any of the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %q", s)
}
