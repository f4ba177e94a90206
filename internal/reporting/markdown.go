package reporting

import (
	"fmt"
	"strings"
	"time"

	"pair-performance-lab/internal/domain"
)

// overviewFields are the headline statistics of the overall comparison table.
var overviewFields = []struct {
	label string
	value func(s domain.Summary) string
}{
	{"总体交易次数", func(s domain.Summary) string { return fmt.Sprintf("%d", s.TradeCount) }},
	{"交易标的数量", func(s domain.Summary) string { return fmt.Sprintf("%d", s.SymbolCount) }},
	{"平均单笔收益", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.AvgPnLRatio) }},
	{"交易胜率", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.WinRate) }},
	{"单笔盈亏比", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.PerTradeGainLossRatio) }},
	{"累计盈亏比", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.CumulativeGainLossRatio) }},
	{"交易得分", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.Score) }},
	{"赢面", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.Edge) }},
	{"盈亏平衡点", func(s domain.Summary) string { return fmt.Sprintf("%.4f", s.BreakEvenPoint) }},
	{"每自然日收益", func(s domain.Summary) string { return fmt.Sprintf("%.2f", s.ReturnPerCalendarDay) }},
}

// RenderMarkdown renders the baseline/filtered comparison as Markdown.
func RenderMarkdown(c *domain.Comparison) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# 组合过滤对比 (%s)\n\n", c.Workflow))
	if c.WindowStart != nil && c.WindowEnd != nil {
		sb.WriteString(fmt.Sprintf("开仓时间窗口: %s ~ %s\n\n",
			c.WindowStart.Format(time.DateTime), c.WindowEnd.Format(time.DateTime)))
	} else {
		sb.WriteString("过滤后无交易, 基准为空.\n\n")
	}

	// Overall
	sb.WriteString("## 整体\n\n")
	sb.WriteString("| 指标 | 过滤前 | 过滤后 |\n")
	sb.WriteString("|------|--------|--------|\n")
	for _, f := range overviewFields {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			f.label, f.value(c.BaselineOverall), f.value(c.FilteredOverall)))
	}
	sb.WriteString("\n")

	// Per group
	sb.WriteString(fmt.Sprintf("## 按%s\n\n", c.Key.Column()))
	writeGroupTable(&sb, "过滤前", c.Key, c.Baseline)
	writeGroupTable(&sb, "过滤后", c.Key, c.Filtered)

	return sb.String()
}

func writeGroupTable(sb *strings.Builder, title string, key domain.GroupKey, rows []domain.SummaryRow) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(rows) == 0 {
		sb.WriteString("无交易.\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("| %s | 交易次数 | 胜率 | 平均单笔收益 | 交易得分 | 赢面 |\n", key.Column()))
	sb.WriteString("|------|----------|------|--------------|----------|------|\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.4f | %.4f |\n",
			r.Value, r.TradeCount, r.WinRate, r.AvgPnLRatio, r.Score, r.Edge))
	}
	sb.WriteString("\n")
}
