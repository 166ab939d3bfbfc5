// Package bars loads per-contract daily bar tables from CSV and serves point
// lookups by trade date. Tables are cached per contract for the duration of
// one run.
package bars

import (
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"mainline/internal/domain"
)

// LookupStatus classifies the result of a point lookup.
type LookupStatus int

const (
	// LookupOK means exactly one bar exists for the date.
	LookupOK LookupStatus = iota
	// LookupAbsent means the contract has no bar for the date, including
	// every date of a contract whose file could not be loaded.
	LookupAbsent
	// LookupDuplicate means the table holds more than one row for the
	// date. The contract is treated as absent that day, but the condition
	// is surfaced separately so audits can tell it apart from a gap.
	LookupDuplicate
)

// dateColumns are the accepted date headers, in priority order.
var dateColumns = []string{"trade_date", "datetime", "date"}

// dateLayouts are the accepted date formats.
var dateLayouts = []string{"20060102", "2006-01-02", "2006/01/02"}

type table struct {
	unavailable bool
	bars        map[time.Time]domain.DailyBar
	duplicates  map[time.Time]bool
	dates       []time.Time // sorted ascending, duplicates included once
}

// Store lazily loads and caches one bar table per contract file.
type Store struct {
	cache map[string]*table
	log   *slog.Logger

	loadFailures      int
	integrityWarnings int
}

// NewStore creates an empty Store logging through the given logger.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		cache: make(map[string]*table),
		log:   log,
	}
}

// Lookup returns the contract's bar for the given trade date. Zero rows for
// the date (or an unloadable file) yield LookupAbsent; more than one row
// yields LookupDuplicate.
func (s *Store) Lookup(f domain.ContractFile, date time.Time) (domain.DailyBar, LookupStatus) {
	t := s.load(f)
	if t.unavailable {
		return domain.DailyBar{}, LookupAbsent
	}
	if t.duplicates[date] {
		return domain.DailyBar{}, LookupDuplicate
	}
	bar, ok := t.bars[date]
	if !ok {
		return domain.DailyBar{}, LookupAbsent
	}
	return bar, LookupOK
}

// Dates returns every trade date present in the contract's table, sorted
// ascending. Unavailable contracts return nil.
func (s *Store) Dates(f domain.ContractFile) []time.Time {
	return s.load(f).dates
}

// LoadFailures returns how many contract files failed to load.
func (s *Store) LoadFailures() int { return s.loadFailures }

// IntegrityWarnings returns how many (contract, date) pairs carried more
// than one row.
func (s *Store) IntegrityWarnings() int { return s.integrityWarnings }

func (s *Store) load(f domain.ContractFile) *table {
	if t, ok := s.cache[f.ID.Code]; ok {
		return t
	}
	t := s.parse(f)
	s.cache[f.ID.Code] = t
	return t
}

func (s *Store) parse(f domain.ContractFile) *table {
	fail := func(msg string, args ...any) *table {
		s.loadFailures++
		s.log.Warn(msg, args...)
		return &table{unavailable: true}
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return fail("contract file unreadable, treating as no data", "contract", f.ID.Code, "path", f.Path, "error", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fail("contract file unparseable, treating as no data", "contract", f.ID.Code, "path", f.Path, "error", err)
	}
	if len(records) < 1 {
		return fail("contract file empty, treating as no data", "contract", f.ID.Code, "path", f.Path)
	}

	cols := indexColumns(records[0])
	dateIdx := -1
	for _, name := range dateColumns {
		if i, ok := cols[name]; ok {
			dateIdx = i
			break
		}
	}
	if dateIdx == -1 {
		return fail("contract file has no recognizable date column, treating as no data",
			"contract", f.ID.Code, "path", f.Path, "header", records[0])
	}

	t := &table{
		bars:       make(map[time.Time]domain.DailyBar),
		duplicates: make(map[time.Time]bool),
	}

	for _, row := range records[1:] {
		if len(row) <= dateIdx {
			continue
		}
		date, ok := parseDate(row[dateIdx])
		if !ok {
			continue
		}

		if _, exists := t.bars[date]; exists || t.duplicates[date] {
			if !t.duplicates[date] {
				t.duplicates[date] = true
				delete(t.bars, date)
				s.integrityWarnings++
				s.log.Warn("duplicate rows for trade date, treating contract as absent that day",
					"contract", f.ID.Code, "trade_date", date.Format("2006-01-02"))
			}
			continue
		}

		bar := domain.DailyBar{Contract: f.ID.Code, TradeDate: date}
		bar.Open = floatAt(row, cols, "open")
		bar.High = floatAt(row, cols, "high")
		bar.Low = floatAt(row, cols, "low")
		bar.Close = floatAt(row, cols, "close")
		if i, ok := cols["open_interest"]; ok {
			bar.OpenInterest = floatCell(row, i)
		} else if i, ok := cols["oi"]; ok {
			bar.OpenInterest = floatCell(row, i)
		}
		if i, ok := cols["volume"]; ok && i < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
				bar.Volume = v
				bar.HasVolume = true
			}
		}

		t.bars[date] = bar
		t.dates = append(t.dates, date)
	}

	sort.Slice(t.dates, func(i, j int) bool { return t.dates[i].Before(t.dates[j]) })
	return t
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}
	return cols
}

func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	// Tolerate datetime cells by keeping the date part only.
	if i := strings.IndexAny(cell, " T"); i > 0 {
		cell = cell[:i]
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func floatAt(row []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return 0
	}
	return floatCell(row, i)
}

func floatCell(row []string, i int) float64 {
	if i >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0
	}
	return v
}
