package engine

import (
	"time"

	"mainline/internal/domain"
)

// IsDeliveryMonth reports whether the trade date falls in the contract's
// delivery month: the parsed (year, month) of the contract equals the
// (year, month) of the date. Contracts without a parsed delivery month
// (unparseable codes, or year-day suffixes) are never in a delivery month.
func IsDeliveryMonth(id domain.ContractID, date time.Time) bool {
	if !id.Parsed || id.Month == 0 {
		return false
	}
	return date.Year() == id.Year && int(date.Month()) == id.Month
}

// IsEligible reports whether the contract may be considered as the main
// contract on the given trade date.
func IsEligible(id domain.ContractID, date time.Time, allowDeliveryMonth bool) bool {
	return allowDeliveryMonth || !IsDeliveryMonth(id, date)
}
