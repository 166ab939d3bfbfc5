package domain

import (
	"testing"
	"time"
)

func TestPeriodKeyOrdersChronologically(t *testing.T) {
	rb2401 := ContractID{Product: "RB", Code: "RB2401", Year: 2024, Month: 1, Parsed: true}
	rb2312 := ContractID{Product: "RB", Code: "RB2312", Year: 2023, Month: 12, Parsed: true}
	rb2410 := ContractID{Product: "RB", Code: "RB2410", Year: 2024, Month: 10, Parsed: true}

	if !(rb2312.PeriodKey() < rb2401.PeriodKey()) {
		t.Errorf("RB2312 (%d) should sort before RB2401 (%d)", rb2312.PeriodKey(), rb2401.PeriodKey())
	}
	if !(rb2401.PeriodKey() < rb2410.PeriodKey()) {
		t.Errorf("RB2401 (%d) should sort before RB2410 (%d)", rb2401.PeriodKey(), rb2410.PeriodKey())
	}
}

func TestPeriodKeyUnparsed(t *testing.T) {
	bad := ContractID{Product: "RB", Code: "RB24AB"}
	if got := bad.PeriodKey(); got != 0 {
		t.Errorf("unparsed contract PeriodKey = %d, want 0", got)
	}
}

func TestZeroValues(t *testing.T) {
	var bar DailyBar
	if bar.HasVolume {
		t.Error("zero-value DailyBar should not report a volume")
	}
	if !bar.TradeDate.IsZero() {
		t.Error("zero-value DailyBar should have zero TradeDate")
	}

	var rec ContinuousRecord
	if rec.Symbol != "" || rec.OriginalContract != "" {
		t.Error("zero-value ContinuousRecord should have empty symbol fields")
	}

	ev := SwitchEvent{TradeDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), From: "RB2405", To: "RB2410", Index: 7}
	if ev.From == ev.To {
		t.Error("switch event endpoints should differ")
	}
}
