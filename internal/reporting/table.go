package reporting

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"pair-performance-lab/internal/domain"
)

// RenderTable prints an aggregation table with every summary column.
func RenderTable(w io.Writer, key domain.GroupKey, rows []domain.SummaryRow) error {
	table := tablewriter.NewWriter(w)

	header := make([]any, 0, len(domain.SummaryColumns)+1)
	header = append(header, key.Column())
	for _, c := range domain.SummaryColumns {
		header = append(header, c)
	}
	table.Header(header...)

	for _, r := range rows {
		cells := make([]any, 0, len(header))
		cells = append(cells, r.Value)
		for _, v := range r.Summary.Values() {
			cells = append(cells, FormatCell(v))
		}
		table.Append(cells...)
	}

	return table.Render()
}

// RenderSummary prints one summary as a two-column label/value table.
func RenderSummary(w io.Writer, s domain.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("指标", "值")

	for i, v := range s.Values() {
		table.Append(domain.SummaryColumns[i], FormatCell(v))
	}

	return table.Render()
}

// FormatCell renders a summary cell for text output. Nil cells are empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.DateTime)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}
