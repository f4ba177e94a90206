package domain

// GroupKey enumerates the columns a trade pair collection can be aggregated by.
type GroupKey int

// Aggregation keys. The zero value is invalid.
const (
	GroupKeySymbol GroupKey = iota + 1
	GroupKeyDirection
	GroupKeyCloseYear
	GroupKeyCloseMonth
	GroupKeyCloseWeek
	GroupKeyCloseDay
	GroupKeyOpenYear
	GroupKeyOpenMonth
	GroupKeyOpenDay
	GroupKeyOpenWeek
)

type groupKeyNames struct {
	id     string
	column string
}

var groupKeyTable = map[GroupKey]groupKeyNames{
	GroupKeySymbol:     {"symbol", ColSymbol},
	GroupKeyDirection:  {"direction", ColDirection},
	GroupKeyCloseYear:  {"close_year", "平仓年"},
	GroupKeyCloseMonth: {"close_month", "平仓月"},
	GroupKeyCloseWeek:  {"close_week", "平仓周"},
	GroupKeyCloseDay:   {"close_day", "平仓日"},
	GroupKeyOpenYear:   {"open_year", "开仓年"},
	GroupKeyOpenMonth:  {"open_month", "开仓月"},
	GroupKeyOpenDay:    {"open_day", "开仓日"},
	GroupKeyOpenWeek:   {"open_week", "开仓周"},
}

// GroupKeys lists every legal key in declaration order.
var GroupKeys = []GroupKey{
	GroupKeySymbol, GroupKeyDirection,
	GroupKeyCloseYear, GroupKeyCloseMonth, GroupKeyCloseWeek, GroupKeyCloseDay,
	GroupKeyOpenYear, GroupKeyOpenMonth, GroupKeyOpenDay, GroupKeyOpenWeek,
}

// ExportKeys are the keys written to a workbook, one sheet each.
var ExportKeys = []GroupKey{
	GroupKeySymbol, GroupKeyDirection,
	GroupKeyCloseYear, GroupKeyCloseMonth, GroupKeyCloseWeek, GroupKeyCloseDay,
}

// Valid reports whether k is one of the enumerated keys.
func (k GroupKey) Valid() bool {
	_, ok := groupKeyTable[k]
	return ok
}

// ID returns the ASCII identifier, e.g. close_year.
func (k GroupKey) ID() string {
	return groupKeyTable[k].id
}

// Column returns the table column name, e.g. 平仓年.
func (k GroupKey) Column() string {
	return groupKeyTable[k].column
}

// SheetName returns the workbook sheet name for the key.
func (k GroupKey) SheetName() string {
	return k.Column() + "聚合"
}

func (k GroupKey) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return k.ID()
}

// ParseGroupKey accepts either the identifier or the column name.
func ParseGroupKey(s string) (GroupKey, error) {
	for _, k := range GroupKeys {
		names := groupKeyTable[k]
		if s == names.id || s == names.column {
			return k, nil
		}
	}
	return 0, &InvalidKeyError{Key: s}
}

// Value returns the group value of p for key k.
// The caller must pass a valid key.
func (k GroupKey) Value(p *TradePair, open, close CalendarLabels) string {
	switch k {
	case GroupKeySymbol:
		return p.Symbol
	case GroupKeyDirection:
		return string(p.Direction)
	case GroupKeyCloseYear:
		return close.Year
	case GroupKeyCloseMonth:
		return close.Month
	case GroupKeyCloseWeek:
		return close.Week
	case GroupKeyCloseDay:
		return close.Day
	case GroupKeyOpenYear:
		return open.Year
	case GroupKeyOpenMonth:
		return open.Month
	case GroupKeyOpenDay:
		return open.Day
	case GroupKeyOpenWeek:
		return open.Week
	}
	return ""
}
