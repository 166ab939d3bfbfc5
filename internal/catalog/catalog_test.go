package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mainline/internal/domain"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("trade_date,volume\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverMatchesExactPattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"RB2401.csv",
		"RB2410.csv",
		"RB24011.csv",    // 5-digit suffix
		"rb2401.csv",     // wrong case
		"CU2401.csv",     // wrong product
		"RB2401.csv.bak", // wrong extension
		"RB_main_contract_mapping.csv",
	)

	files, err := Discover(dir, "RB", YearMonth)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Discover found %d files, want 2: %+v", len(files), files)
	}
	for _, f := range files {
		if f.ID.Code != "RB2401" && f.ID.Code != "RB2410" {
			t.Errorf("unexpected contract %q", f.ID.Code)
		}
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope"), "RB", YearMonth); err == nil {
		t.Fatal("Discover should fail on a missing directory")
	}
}

func TestParseCode(t *testing.T) {
	cases := []struct {
		code   string
		mode   SuffixMode
		parsed bool
		year   int
		month  int
		day    int
	}{
		{"RB2401", YearMonth, true, 2024, 1, 0},
		{"RB2412", YearMonth, true, 2024, 12, 0},
		{"RB2413", YearMonth, false, 0, 0, 0}, // month out of range
		{"RB2400", YearMonth, false, 0, 0, 0},
		{"RB24A1", YearMonth, false, 0, 0, 0},
		{"RB2415", YearDay, true, 2024, 0, 15},
		{"RB2432", YearDay, false, 0, 0, 0}, // day out of range
	}

	for _, tc := range cases {
		id := ParseCode(tc.code, "RB", tc.mode)
		if id.Parsed != tc.parsed {
			t.Errorf("ParseCode(%q, %s).Parsed = %v, want %v", tc.code, tc.mode, id.Parsed, tc.parsed)
			continue
		}
		if id.Year != tc.year || id.Month != tc.month || id.Day != tc.day {
			t.Errorf("ParseCode(%q, %s) = %d/%d/%d, want %d/%d/%d",
				tc.code, tc.mode, id.Year, id.Month, id.Day, tc.year, tc.month, tc.day)
		}
	}
}

func TestSortPutsUnparsedLastInInputOrder(t *testing.T) {
	files := []domain.ContractFile{
		{ID: ParseCode("RB2419", "RB", YearMonth)}, // unparseable, first in input
		{ID: ParseCode("RB2410", "RB", YearMonth)},
		{ID: ParseCode("RB2413", "RB", YearMonth)}, // unparseable, second in input
		{ID: ParseCode("RB2401", "RB", YearMonth)},
	}
	Sort(files)

	want := []string{"RB2401", "RB2410", "RB2419", "RB2413"}
	for i, f := range files {
		if f.ID.Code != want[i] {
			t.Fatalf("sorted order %v, want %v", codes(files), want)
		}
	}
}

func codes(files []domain.ContractFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.ID.Code
	}
	return out
}

func TestPeriodDates(t *testing.T) {
	files := []domain.ContractFile{
		{ID: ParseCode("RB2410", "RB", YearMonth)},
		{ID: ParseCode("RB2401", "RB", YearMonth)},
		{ID: ParseCode("RB2401", "RB", YearMonth)}, // duplicate period
		{ID: ParseCode("RB24XX", "RB", YearMonth)}, // unparseable
	}

	dates := PeriodDates(files)
	want := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(dates) != len(want) {
		t.Fatalf("PeriodDates returned %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestLoadContractList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contracts.csv")
	body := "ts_code,symbol,list_date\nRB2401.SHF,RB2401,20230117\nRB2405.SHF,RB2405,20230517\n#comment,skipped,x\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	contracts, err := LoadContractList(path)
	if err != nil {
		t.Fatalf("LoadContractList: %v", err)
	}
	if len(contracts) != 2 || contracts[0] != "RB2401" || contracts[1] != "RB2405" {
		t.Fatalf("contracts = %v", contracts)
	}

	missing := MissingContracts(contracts, map[string]bool{"RB2401": true})
	if len(missing) != 1 || missing[0] != "RB2405" {
		t.Fatalf("missing = %v", missing)
	}
}

func TestLoadContractListNoSymbolColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contracts.csv")
	if err := os.WriteFile(path, []byte("ts_code,list_date\nRB2401.SHF,20230117\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadContractList(path); err == nil {
		t.Fatal("LoadContractList should fail without a symbol column")
	}
}
