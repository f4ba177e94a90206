// Package reporting writes aggregation tables to workbooks, the filtered trade
// table to CSV and the baseline/filtered comparison to markdown.
package reporting

import (
	"context"

	"pair-performance-lab/internal/domain"
)

// Output file names of a composition run.
const (
	BaselineWorkbook = "原始交易评价.xlsx"
	FilteredWorkbook = "组合过滤评价.xlsx"
	SnapshotFile     = "组合过滤交易.csv"
	MarkdownFile     = "对比报告.md"
)

// Sheet is one aggregation table, named by its key.
type Sheet struct {
	Key  domain.GroupKey
	Rows []domain.SummaryRow
}

// Name returns the sheet name, e.g. "平仓年聚合".
func (s Sheet) Name() string {
	return s.Key.SheetName()
}

// Workbook is a named set of aggregation sheets.
type Workbook struct {
	Name   string
	Sheets []Sheet
}

// Snapshot is the filtered trade pair table.
type Snapshot struct {
	Name       string
	Pairs      []domain.FilteredPair
	WithWeight bool
}

// Bundle is everything one workflow run exports into Dir.
type Bundle struct {
	Dir        string
	Workbooks  []Workbook
	Snapshot   *Snapshot
	Comparison *domain.Comparison
}

// Exporter persists a Bundle. Implementations write all files or none.
type Exporter interface {
	Export(ctx context.Context, b Bundle) error
}
