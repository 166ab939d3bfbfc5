// Package catalog discovers per-contract daily files for one futures product
// and orders them chronologically by the delivery period encoded in the
// contract code.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"mainline/internal/domain"
)

// SuffixMode selects how the 4-digit contract suffix is interpreted. The two
// conventions coexist in historical data with no reliable way to tell them
// apart from the code alone, so the mode is always explicit.
type SuffixMode string

const (
	// YearMonth reads the suffix as YYMM: RB2401 delivers January 2024.
	YearMonth SuffixMode = "year-month"
	// YearDay reads the suffix as YYDD. The day digits order contracts
	// within a year but carry no delivery month.
	YearDay SuffixMode = "year-day"
)

// ParseCode decodes a contract code like "RB2401" for the given product.
// The suffix must be exactly 4 digits and, in year-month mode, the month
// must fall in [1, 12]. Codes that fail either check come back with
// Parsed=false rather than an error: callers decide whether to exclude them.
func ParseCode(code, product string, mode SuffixMode) domain.ContractID {
	id := domain.ContractID{Product: product, Code: code}

	if len(code) < len(product) {
		return id
	}
	suffix := code[len(product):]
	if len(suffix) != 4 {
		return id
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return id
		}
	}

	yy := int(suffix[0]-'0')*10 + int(suffix[1]-'0')
	nn := int(suffix[2]-'0')*10 + int(suffix[3]-'0')

	switch mode {
	case YearDay:
		if nn < 1 || nn > 31 {
			return id
		}
		id.Year = 2000 + yy
		id.Day = nn
	default: // YearMonth
		if nn < 1 || nn > 12 {
			return id
		}
		id.Year = 2000 + yy
		id.Month = nn
	}
	id.Parsed = true
	return id
}

// Discover scans dir for files named exactly "<product><4 digits>.csv"
// (case-sensitive product prefix) and returns one ContractFile per match, in
// directory-listing order. Unrelated and malformed filenames are skipped
// silently. A missing or unreadable directory is an error: it aborts the run
// before any day is processed.
func Discover(dir, product string, mode SuffixMode) ([]domain.ContractFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("contract directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("contract directory %s: not a directory", dir)
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(product) + `\d{4}\.csv$`)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading contract directory %s: %w", dir, err)
	}

	var files []domain.ContractFile
	for _, e := range entries {
		if e.IsDir() || !re.MatchString(e.Name()) {
			continue
		}
		code := e.Name()[:len(e.Name())-len(".csv")]
		files = append(files, domain.ContractFile{
			ID:   ParseCode(code, product, mode),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	return files, nil
}

// Sort orders contracts by period key ascending, breaking exact period ties
// by contract code. Contracts whose suffix did not parse sort after all
// parsed ones, keeping their input order.
func Sort(files []domain.ContractFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i].ID, files[j].ID
		switch {
		case a.Parsed && !b.Parsed:
			return true
		case !a.Parsed:
			return false
		case a.PeriodKey() != b.PeriodKey():
			return a.PeriodKey() < b.PeriodKey()
		default:
			return a.Code < b.Code
		}
	})
}

// PeriodDates derives the contract-months date universe: one representative
// day (the first of the delivery month) per parsed contract, deduplicated
// and sorted strictly ascending. Contracts without a delivery month
// (unparsed, or parsed in year-day mode) contribute nothing.
func PeriodDates(files []domain.ContractFile) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, f := range files {
		if !f.ID.Parsed || f.ID.Month == 0 {
			continue
		}
		d := time.Date(f.ID.Year, time.Month(f.ID.Month), 1, 0, 0, 0, 0, time.UTC)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
