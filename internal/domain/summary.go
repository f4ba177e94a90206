package domain

import "time"

// Summary is the fixed-schema statistics record of one trade pair collection.
// The zero value, with nil StartTime/EndTime, is the summary of an empty collection.
type Summary struct {
	StartTime *time.Time // 开始时间, min open time
	EndTime   *time.Time // 结束时间, max close time

	SymbolCount int // 交易标的数量
	TradeCount  int // 总体交易次数

	AvgDaysHeld float64 // 平均持仓天数
	AvgBarsHeld float64 // 平均持仓K线数

	AvgPnLRatio float64 // 平均单笔收益
	PnLRatioStd float64 // 单笔收益标准差
	MaxPnLRatio float64 // 最大单笔收益
	MinPnLRatio float64 // 最小单笔收益

	WinRate                 float64 // 交易胜率
	PerTradeGainLossRatio   float64 // 单笔盈亏比
	CumulativeGainLossRatio float64 // 累计盈亏比
	Score                   float64 // 交易得分
	Edge                    float64 // 赢面

	BreakEvenPoint        float64 // 盈亏平衡点
	OpenDayBreakEvenPoint float64 // 开仓日盈亏平衡点

	ReturnPerCalendarDay float64 // 每自然日收益
	ReturnPerBar         float64 // 每根K线收益
}

// Empty reports whether the summary describes no trades.
func (s Summary) Empty() bool {
	return s.TradeCount == 0
}

// SummaryRow is one row of an aggregation table.
type SummaryRow struct {
	Key   GroupKey
	Value string
	Summary
}

// SummaryColumns are the exported column labels of a Summary in table order.
var SummaryColumns = []string{
	"开始时间", "结束时间", "交易标的数量", "总体交易次数",
	"平均持仓天数", "平均持仓K线数", "平均单笔收益", "单笔收益标准差",
	"最大单笔收益", "最小单笔收益", "交易胜率", "单笔盈亏比",
	"累计盈亏比", "交易得分", "赢面", "盈亏平衡点",
	"开仓日盈亏平衡点", "每自然日收益", "每根K线收益",
}

// Values returns the summary cells in SummaryColumns order.
// Time cells are nil for an empty summary.
func (s Summary) Values() []any {
	var start, end any
	if s.StartTime != nil {
		start = *s.StartTime
	}
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return []any{
		start, end, s.SymbolCount, s.TradeCount,
		s.AvgDaysHeld, s.AvgBarsHeld, s.AvgPnLRatio, s.PnLRatioStd,
		s.MaxPnLRatio, s.MinPnLRatio, s.WinRate, s.PerTradeGainLossRatio,
		s.CumulativeGainLossRatio, s.Score, s.Edge, s.BreakEvenPoint,
		s.OpenDayBreakEvenPoint, s.ReturnPerCalendarDay, s.ReturnPerBar,
	}
}

// SummaryRecord is a persisted aggregation row of one workflow run.
type SummaryRecord struct {
	RunID    string // uuid of the workflow run
	Workflow string // WorkflowHolds | WorkflowDates | WorkflowPairs
	Side     string // SideBaseline | SideFiltered
	GroupKey string // GroupKey.ID(), or GroupKeyOverall
	Value    string // group value, empty for the overall row
	Summary
	CreatedAt time.Time
}

// Workflow and side identifiers.
const (
	WorkflowHolds = "holds"
	WorkflowDates = "dates"
	WorkflowPairs = "pairs"

	SideBaseline = "baseline"
	SideFiltered = "filtered"

	GroupKeyOverall = "overall"
)
