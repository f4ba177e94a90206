package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"pair-performance-lab/internal/domain"
)

// ComputePairID computes a deterministic pair_id using SHA256.
// Formula: SHA256(symbol|direction|open_time_ms|close_time_ms|event_sequence|pnl_ratio)
// Two pairs of one symbol opened on the same bar by different event chains
// get different ids; only a byte-identical row repeats one.
// Returns hex-encoded hash (64 characters).
func ComputePairID(p *domain.TradePair) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%s|%s",
		p.Symbol,
		string(p.Direction),
		p.OpenTime.UnixMilli(),
		p.CloseTime.UnixMilli(),
		p.EventSequence,
		strconv.FormatFloat(p.PnLRatio, 'g', -1, 64),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeHoldingID computes a deterministic holding_id using SHA256.
// Formula: SHA256(composition_date|security_code)
func ComputeHoldingID(h *domain.PortfolioHolding) string {
	data := fmt.Sprintf("%s|%s", domain.DateOf(h.CompositionDate), h.SecurityCode)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
