package engine

import (
	"log/slog"

	"mainline/internal/bars"
	"mainline/internal/domain"
)

// buildSeries assembles the continuous series from the daily mapping: for
// each mapped day, the full bar of the selected contract from the kline
// store, tagged with the synthetic symbol and the originating contract. A
// selected contract missing its bar at build time is a consistency failure
// between the selection pass and the kline data; the day is skipped and
// counted, never fatal.
func buildSeries(mapping []domain.MainContractRecord, klineFiles map[string]domain.ContractFile, store *bars.Store, symbol string, log *slog.Logger) ([]domain.ContinuousRecord, int) {
	series := make([]domain.ContinuousRecord, 0, len(mapping))
	failures := 0

	for _, rec := range mapping {
		f, ok := klineFiles[rec.Contract]
		if !ok {
			failures++
			log.Warn("selected contract has no kline file",
				"contract", rec.Contract, "trade_date", rec.TradeDate.Format("2006-01-02"))
			continue
		}
		bar, status := store.Lookup(f, rec.TradeDate)
		if status != bars.LookupOK {
			failures++
			log.Warn("selected contract has no kline bar for its selection day",
				"contract", rec.Contract, "trade_date", rec.TradeDate.Format("2006-01-02"))
			continue
		}
		series = append(series, domain.ContinuousRecord{
			DailyBar:         bar,
			Symbol:           symbol,
			OriginalContract: rec.Contract,
		})
	}

	// The mapping holds one record per day in ascending date order, so the
	// series is already sorted.
	return series, failures
}
