package bars

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mainline/internal/domain"
)

func contractFile(t *testing.T, dir, code, body string) domain.ContractFile {
	t.Helper()
	path := filepath.Join(dir, code+".csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return domain.ContractFile{
		ID:   domain.ContractID{Product: "RB", Code: code, Year: 2024, Month: 1, Parsed: true},
		Path: path,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	f := contractFile(t, dir, "RB2401",
		"trade_date,open,high,low,close,volume,open_interest\n"+
			"20240115,3900,3950,3880,3940,120345,80000\n"+
			"20240116,3940,3980,3930,3975,98000,79000\n")

	s := NewStore(nil)

	bar, status := s.Lookup(f, day(2024, 1, 15))
	if status != LookupOK {
		t.Fatalf("Lookup status = %v, want LookupOK", status)
	}
	if bar.Close != 3940 || bar.Volume != 120345 || !bar.HasVolume {
		t.Errorf("bar = %+v", bar)
	}
	if bar.OpenInterest != 80000 {
		t.Errorf("OpenInterest = %v, want 80000", bar.OpenInterest)
	}

	if _, status := s.Lookup(f, day(2024, 1, 17)); status != LookupAbsent {
		t.Errorf("missing date status = %v, want LookupAbsent", status)
	}
}

func TestDateColumnNormalization(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		code string
		body string
	}{
		{"RB2401", "trade_date,volume\n2024-01-15,100\n"},
		{"RB2405", "datetime,volume\n2024-01-15 00:00:00,100\n"},
		{"RB2410", "date,volume\n2024/01/15,100\n"},
	}

	s := NewStore(nil)
	for _, tc := range cases {
		f := contractFile(t, dir, tc.code, tc.body)
		if _, status := s.Lookup(f, day(2024, 1, 15)); status != LookupOK {
			t.Errorf("%s: status = %v, want LookupOK", tc.code, status)
		}
	}
}

func TestDuplicateDateIsIntegrityWarning(t *testing.T) {
	dir := t.TempDir()
	f := contractFile(t, dir, "RB2401",
		"trade_date,volume\n20240115,100\n20240115,200\n20240116,300\n")

	s := NewStore(nil)

	if _, status := s.Lookup(f, day(2024, 1, 15)); status != LookupDuplicate {
		t.Fatalf("duplicate date status = %v, want LookupDuplicate", status)
	}
	// The rest of the table is still served.
	if bar, status := s.Lookup(f, day(2024, 1, 16)); status != LookupOK || bar.Volume != 300 {
		t.Errorf("clean date after duplicate: status=%v bar=%+v", status, bar)
	}
	if s.IntegrityWarnings() != 1 {
		t.Errorf("IntegrityWarnings = %d, want 1", s.IntegrityWarnings())
	}
}

func TestUnavailableContract(t *testing.T) {
	dir := t.TempDir()

	// No recognizable date column.
	noDate := contractFile(t, dir, "RB2401", "when,volume\n20240115,100\n")
	// Missing file.
	missing := domain.ContractFile{
		ID:   domain.ContractID{Product: "RB", Code: "RB2405"},
		Path: filepath.Join(dir, "RB2405.csv"),
	}

	s := NewStore(nil)

	if _, status := s.Lookup(noDate, day(2024, 1, 15)); status != LookupAbsent {
		t.Errorf("no-date-column status = %v, want LookupAbsent", status)
	}
	if _, status := s.Lookup(missing, day(2024, 1, 15)); status != LookupAbsent {
		t.Errorf("missing-file status = %v, want LookupAbsent", status)
	}
	if s.LoadFailures() != 2 {
		t.Errorf("LoadFailures = %d, want 2", s.LoadFailures())
	}

	// Repeated lookups hit the cache and do not double-count.
	s.Lookup(missing, day(2024, 1, 16))
	if s.LoadFailures() != 2 {
		t.Errorf("LoadFailures after cached lookup = %d, want 2", s.LoadFailures())
	}
}

func TestMissingVolumeCell(t *testing.T) {
	dir := t.TempDir()
	f := contractFile(t, dir, "RB2401", "trade_date,close,volume\n20240115,3940,\n20240116,3950,88\n")

	s := NewStore(nil)

	bar, status := s.Lookup(f, day(2024, 1, 15))
	if status != LookupOK {
		t.Fatalf("status = %v", status)
	}
	if bar.HasVolume {
		t.Error("empty volume cell should leave HasVolume false")
	}

	bar, _ = s.Lookup(f, day(2024, 1, 16))
	if !bar.HasVolume || bar.Volume != 88 {
		t.Errorf("bar = %+v", bar)
	}
}

func TestDates(t *testing.T) {
	dir := t.TempDir()
	f := contractFile(t, dir, "RB2401", "trade_date,volume\n20240116,1\n20240115,2\n")

	s := NewStore(nil)
	dates := s.Dates(f)
	if len(dates) != 2 {
		t.Fatalf("Dates returned %d entries, want 2", len(dates))
	}
	if !dates[0].Equal(day(2024, 1, 15)) || !dates[1].Equal(day(2024, 1, 16)) {
		t.Errorf("dates not sorted ascending: %v", dates)
	}
}
