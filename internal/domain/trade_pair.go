package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade pair.
type Direction string

// Direction values as written by the pair producer.
const (
	DirectionLong  Direction = "多头"
	DirectionShort Direction = "空头"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// TradePair is one completed open/close cycle for a single instrument.
type TradePair struct {
	Symbol      string    // 标的代码
	Direction   Direction // 交易方向
	MaxPosition int       // 最大仓位

	OpenTime       time.Time       // 开仓时间
	CumulativeOpen decimal.Decimal // 累计开仓

	CloseTime       time.Time       // 平仓时间
	CumulativeClose decimal.Decimal // 累计平仓

	TurnoverCount int     // 累计换手
	BarsHeld      int     // 持仓K线数
	DaysHeld      float64 // 持仓天数
	EventSequence string  // 事件序列, diagnostic only

	PnLAmount decimal.Decimal // 盈亏金额
	TradePnL  float64         // 交易盈亏, optional, carried through exports
	PnLRatio  float64         // 盈亏比例, source of every statistic
}

// Validate checks the fields every statistic relies on.
func (p *TradePair) Validate() error {
	switch {
	case p.Symbol == "":
		return &SchemaError{Column: ColSymbol, Reason: "empty symbol"}
	case !p.Direction.Valid():
		return &SchemaError{Column: ColDirection, Reason: "unknown direction " + string(p.Direction)}
	case p.OpenTime.IsZero():
		return &SchemaError{Column: ColOpenTime, Reason: "missing open time"}
	case p.CloseTime.IsZero():
		return &SchemaError{Column: ColCloseTime, Reason: "missing close time"}
	case p.CloseTime.Before(p.OpenTime):
		return &SchemaError{Column: ColCloseTime, Reason: "close time before open time"}
	case math.IsNaN(p.PnLRatio) || math.IsInf(p.PnLRatio, 0):
		return &SchemaError{Column: ColPnLRatio, Reason: "non-finite pnl ratio"}
	}
	return nil
}

// OpenDate returns the calendar date of the open time.
func (p *TradePair) OpenDate() Date {
	return DateOf(p.OpenTime)
}

// FilteredPair is a trade pair that survived a composition filter.
type FilteredPair struct {
	TradePair
	OpenDate Date     // 开仓日期
	Weight   *float64 // 持仓权重, set by the holdings workflow only
}

// Column names of the trade pair table.
const (
	ColSymbol          = "标的代码"
	ColDirection       = "交易方向"
	ColMaxPosition     = "最大仓位"
	ColOpenTime        = "开仓时间"
	ColCumulativeOpen  = "累计开仓"
	ColCloseTime       = "平仓时间"
	ColCumulativeClose = "累计平仓"
	ColTurnoverCount   = "累计换手"
	ColBarsHeld        = "持仓K线数"
	ColEventSequence   = "事件序列"
	ColDaysHeld        = "持仓天数"
	ColPnLAmount       = "盈亏金额"
	ColTradePnL        = "交易盈亏"
	ColPnLRatio        = "盈亏比例"
	ColOpenDate        = "开仓日期"
	ColWeight          = "持仓权重"
)

// TradePairColumns lists the required trade pair columns in table order.
var TradePairColumns = []string{
	ColSymbol, ColDirection, ColMaxPosition, ColOpenTime, ColCumulativeOpen,
	ColCloseTime, ColCumulativeClose, ColTurnoverCount, ColBarsHeld,
	ColEventSequence, ColDaysHeld, ColPnLAmount, ColPnLRatio,
}
