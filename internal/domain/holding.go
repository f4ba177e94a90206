package domain

import (
	"math"
	"time"
)

// PortfolioHolding is one constituent of a portfolio on a composition date.
type PortfolioHolding struct {
	CompositionDate time.Time // 成分日期
	SecurityCode    string    // 证券代码
	Weight          float64   // 持仓权重
}

// Holding table column names.
const (
	ColCompositionDate = "成分日期"
	ColSecurityCode    = "证券代码"
)

// HoldingColumns lists the required holding columns.
var HoldingColumns = []string{ColCompositionDate, ColSecurityCode, ColWeight}

// Validate checks the join fields and the weight.
func (h *PortfolioHolding) Validate() error {
	switch {
	case h.CompositionDate.IsZero():
		return &SchemaError{Column: ColCompositionDate, Reason: "missing composition date"}
	case h.SecurityCode == "":
		return &SchemaError{Column: ColSecurityCode, Reason: "empty security code"}
	case math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0):
		return &SchemaError{Column: ColWeight, Reason: "non-finite weight"}
	}
	return nil
}
