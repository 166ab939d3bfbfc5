// Package domain defines the value types shared across the continuous
// main-contract pipeline: contract identifiers, daily bars, the per-day
// main-contract mapping, switch events, and continuous series records.
package domain

import "time"

// ContractID identifies one physical futures contract, e.g. "RB2401" for
// the rebar contract delivering January 2024.
type ContractID struct {
	Product string // product code, e.g. "RB"
	Code    string // full contract code, e.g. "RB2401"

	// Year/Month/Day are decoded from the 4-digit suffix. Month is set in
	// year-month mode, Day in year-day mode; the other is zero.
	Year  int
	Month int
	Day   int

	// Parsed reports whether the suffix decoded cleanly under the active
	// suffix mode. Unparseable contracts are kept but sort last and are
	// never considered to be in a delivery month.
	Parsed bool
}

// PeriodKey returns a sortable chronological key for the contract. Contracts
// that failed to parse return 0 and must be ordered by the caller's fallback
// rule (input order, after all parsed contracts).
func (c ContractID) PeriodKey() int {
	if !c.Parsed {
		return 0
	}
	return c.Year*10000 + c.Month*100 + c.Day
}

// ContractFile binds a contract to the CSV file holding its daily bars.
type ContractFile struct {
	ID   ContractID
	Path string
}

// DailyBar is one row of a contract's daily bar table. TradeDate is the join
// key across contracts. OHLC and open interest are carried opportunistically:
// a column missing from the source file leaves the field zero. Volume drives
// main-contract selection, so its presence is tracked explicitly.
type DailyBar struct {
	Contract     string
	TradeDate    time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64

	// HasVolume reports whether the source row carried a usable volume
	// value. Bars without one never qualify for selection.
	HasVolume bool
}

// MainContractRecord maps one trading day to its selected main contract.
type MainContractRecord struct {
	TradeDate time.Time
	Contract  string
	Volume    float64
}

// SwitchEvent records a main-contract roll: the day on which the selection
// moved from one contract to another. Index is the 0-based position of
// TradeDate within the processed day sequence.
type SwitchEvent struct {
	TradeDate time.Time
	From      string
	To        string
	Index     int
}

// ContinuousRecord is one day of the stitched continuous series: the full
// bar of that day's main contract tagged with the synthetic symbol
// ("<PRODUCT>9999") and the originating contract code.
type ContinuousRecord struct {
	DailyBar

	Symbol           string
	OriginalContract string
}

// Summary describes one completed pipeline run. The run always finishes and
// reports per-class counts instead of aborting on recoverable failures.
type Summary struct {
	RunID     string
	Product   string
	TotalDays int // days in the date universe

	MappedDays int // days with a resolved main contract
	Switches   int

	NoMainDays        int // days where no eligible contract had data
	BuildFailures     int // selected contract missing its bar at build time
	IntegrityWarnings int // duplicate rows for one (contract, date)
	LoadFailures      int // contract files that could not be loaded
}
