package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"pair-performance-lab/internal/domain"
)

// ReadTradePairs reads a trade pair table and validates every row.
func ReadTradePairs(r io.Reader) ([]domain.TradePair, error) {
	t, err := readTable(r, domain.TradePairColumns)
	if err != nil {
		return nil, err
	}

	pairs := make([]domain.TradePair, 0, len(t.rows))
	for n, row := range t.rows {
		p := &rowParser{t: t, row: row, n: n}
		pair := domain.TradePair{
			Symbol:          p.str(domain.ColSymbol),
			Direction:       domain.Direction(p.str(domain.ColDirection)),
			MaxPosition:     p.int(domain.ColMaxPosition),
			OpenTime:        p.time(domain.ColOpenTime),
			CumulativeOpen:  p.decimal(domain.ColCumulativeOpen),
			CloseTime:       p.time(domain.ColCloseTime),
			CumulativeClose: p.decimal(domain.ColCumulativeClose),
			TurnoverCount:   p.int(domain.ColTurnoverCount),
			BarsHeld:        p.int(domain.ColBarsHeld),
			EventSequence:   p.str(domain.ColEventSequence),
			DaysHeld:        p.float(domain.ColDaysHeld),
			PnLAmount:       p.decimal(domain.ColPnLAmount),
			TradePnL:        p.optionalFloat(domain.ColTradePnL),
			PnLRatio:        p.float(domain.ColPnLRatio),
		}
		if p.err != nil {
			return nil, p.err
		}
		if err := pair.Validate(); err != nil {
			return nil, withRow(err, n)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// ReadHoldings reads a portfolio holding table. Extra columns are ignored.
func ReadHoldings(r io.Reader) ([]domain.PortfolioHolding, error) {
	t, err := readTable(r, domain.HoldingColumns)
	if err != nil {
		return nil, err
	}

	holdings := make([]domain.PortfolioHolding, 0, len(t.rows))
	for n, row := range t.rows {
		p := &rowParser{t: t, row: row, n: n}
		h := domain.PortfolioHolding{
			CompositionDate: p.time(domain.ColCompositionDate),
			SecurityCode:    p.str(domain.ColSecurityCode),
			Weight:          p.float(domain.ColWeight),
		}
		if p.err != nil {
			return nil, p.err
		}
		if err := h.Validate(); err != nil {
			return nil, withRow(err, n)
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// DateColumn is the column read by ReadEligibleDates.
const DateColumn = "date"

// ReadEligibleDates reads a single-column date table.
func ReadEligibleDates(r io.Reader) (domain.EligibleDates, error) {
	t, err := readTable(r, []string{DateColumn})
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		v, _ := t.cell(row, DateColumn)
		values = append(values, v)
	}
	return domain.NewEligibleDates(values...)
}

// ReadTradePairsFile opens path and reads a trade pair table.
func ReadTradePairsFile(path string) ([]domain.TradePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade pairs: %w", err)
	}
	defer f.Close()
	return ReadTradePairs(f)
}

// ReadHoldingsFile opens path and reads a holding table.
func ReadHoldingsFile(path string) ([]domain.PortfolioHolding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holdings: %w", err)
	}
	defer f.Close()
	return ReadHoldings(f)
}

// ReadEligibleDatesFile opens path and reads a date table.
func ReadEligibleDatesFile(path string) (domain.EligibleDates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dates: %w", err)
	}
	defer f.Close()
	return ReadEligibleDates(f)
}

func withRow(err error, n int) error {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		schemaErr.Row = n
	}
	return err
}
