package engine

import "mainline/internal/domain"

// rollDetector tracks the previous selection across the ordered day sequence
// and emits a switch event whenever the main contract changes. The state
// only ever transitions through actual selections, so the first mapped day
// and days following a no-contract gap never produce a spurious switch.
type rollDetector struct {
	prev string
}

// observe feeds one day's selection. index is the 0-based position of the
// day within the processed sequence.
func (r *rollDetector) observe(rec domain.MainContractRecord, index int) (domain.SwitchEvent, bool) {
	defer func() { r.prev = rec.Contract }()

	if r.prev != "" && r.prev != rec.Contract {
		return domain.SwitchEvent{
			TradeDate: rec.TradeDate,
			From:      r.prev,
			To:        rec.Contract,
			Index:     index,
		}, true
	}
	return domain.SwitchEvent{}, false
}
