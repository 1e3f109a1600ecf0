package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(strategy_id|instrument_id|reference_date)
// A signal yields at most one trade per strategy, so the triple is unique.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	strategyID string,
	instrumentID string,
	referenceDate time.Time,
) string {
	data := fmt.Sprintf("%s|%s|%s",
		strategyID,
		instrumentID,
		referenceDate.UTC().Format("2006-01-02"),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
