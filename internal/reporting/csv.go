package reporting

import (
	"encoding/csv"
	"io"
	"strconv"

	"pair-performance-lab/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// SnapshotColumns returns the snapshot header: the trade pair columns, the
// optional trade pnl, the open date and, for the holdings workflow, the weight.
func SnapshotColumns(withWeight bool) []string {
	cols := append([]string{}, domain.TradePairColumns...)
	cols = append(cols, domain.ColTradePnL, domain.ColOpenDate)
	if withWeight {
		cols = append(cols, domain.ColWeight)
	}
	return cols
}

// WriteSnapshot writes the filtered trade pair table as CSV.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SnapshotColumns(s.WithWeight)); err != nil {
		return err
	}

	for _, fp := range s.Pairs {
		p := fp.TradePair
		record := []string{
			p.Symbol,
			string(p.Direction),
			strconv.Itoa(p.MaxPosition),
			p.OpenTime.Format(timeLayout),
			p.CumulativeOpen.String(),
			p.CloseTime.Format(timeLayout),
			p.CumulativeClose.String(),
			strconv.Itoa(p.TurnoverCount),
			strconv.Itoa(p.BarsHeld),
			p.EventSequence,
			formatFloat(p.DaysHeld),
			p.PnLAmount.String(),
			formatFloat(p.PnLRatio),
			formatFloat(p.TradePnL),
			string(fp.OpenDate),
		}
		if s.WithWeight {
			weight := ""
			if fp.Weight != nil {
				weight = formatFloat(*fp.Weight)
			}
			record = append(record, weight)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
