package engine

import (
	"time"

	"mainline/internal/bars"
	"mainline/internal/domain"
)

// selectMain picks the main contract for one trade date: among eligible
// contracts with a present bar and a usable volume, the strictly greatest
// volume wins. A day where every candidate traded zero volume resolves to no
// main contract.
//
// Exact volume ties resolve to the lexicographically smaller contract code.
// The historical behavior depended on iteration order here; the code-order
// rule makes the result deterministic regardless of how candidates are
// scanned.
func selectMain(date time.Time, files []domain.ContractFile, store *bars.Store, allowDeliveryMonth bool) (domain.MainContractRecord, bool) {
	var (
		best      string
		maxVolume float64
	)

	for _, f := range files {
		if !IsEligible(f.ID, date, allowDeliveryMonth) {
			continue
		}
		bar, status := store.Lookup(f, date)
		if status != bars.LookupOK || !bar.HasVolume {
			continue
		}
		if bar.Volume > maxVolume || (bar.Volume == maxVolume && best != "" && f.ID.Code < best) {
			maxVolume = bar.Volume
			best = f.ID.Code
		}
	}

	if best == "" {
		return domain.MainContractRecord{}, false
	}
	return domain.MainContractRecord{TradeDate: date, Contract: best, Volume: maxVolume}, true
}
