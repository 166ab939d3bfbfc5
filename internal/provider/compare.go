package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mainline/internal/domain"
)

// Mismatch describes one trade date where the local and remote mappings
// disagree. An empty side means the date is missing from that mapping.
type Mismatch struct {
	TradeDate time.Time
	Local     string
	Remote    string
}

// CompareResult summarizes a local-vs-remote mapping comparison.
type CompareResult struct {
	Matched    int
	Mismatches []Mismatch
}

// Clean reports whether both mappings agree on every shared and exclusive
// date.
func (r CompareResult) Clean() bool { return len(r.Mismatches) == 0 }

// Compare joins a locally built mapping against the provider's mapping by
// trade date.
func Compare(local []domain.MainContractRecord, remote []MappingEntry) CompareResult {
	localByDate := make(map[time.Time]string, len(local))
	for _, rec := range local {
		localByDate[rec.TradeDate] = rec.Contract
	}
	remoteByDate := make(map[time.Time]string, len(remote))
	for _, e := range remote {
		remoteByDate[e.TradeDate] = e.Contract
	}

	dates := make(map[time.Time]bool, len(localByDate)+len(remoteByDate))
	for d := range localByDate {
		dates[d] = true
	}
	for d := range remoteByDate {
		dates[d] = true
	}
	ordered := make([]time.Time, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	var res CompareResult
	for _, d := range ordered {
		l, r := localByDate[d], remoteByDate[d]
		if l == r {
			res.Matched++
			continue
		}
		res.Mismatches = append(res.Mismatches, Mismatch{TradeDate: d, Local: l, Remote: r})
	}
	return res
}

// WriteCompareCSV writes the comparison result: one row per disagreeing
// date. A fully matching comparison still produces the file with its header.
func WriteCompareCSV(_ context.Context, path string, res CompareResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{"trade_date", "local_contract", "remote_contract"}}
	for _, m := range res.Mismatches {
		rows = append(rows, []string{m.TradeDate.Format("2006-01-02"), m.Local, m.Remote})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteMappingCSV saves a fetched provider mapping, oldest row first.
func WriteMappingCSV(path string, entries []MappingEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{"trade_date", "mapping_ts_code"}}
	for _, e := range entries {
		rows = append(rows, []string{e.TradeDate.Format("20060102"), e.Contract})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// LoadMappingCSV reads a mapping CSV produced either by this module's build
// (trade_date, main_contract) or by a provider fetch
// (trade_date, mapping_ts_code).
func LoadMappingCSV(path string) ([]MappingEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mapping %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("mapping %s is empty", path)
	}

	dateIdx, codeIdx := -1, -1
	for i, col := range records[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "trade_date", "date":
			if dateIdx == -1 {
				dateIdx = i
			}
		case "main_contract", "mapping_ts_code":
			if codeIdx == -1 {
				codeIdx = i
			}
		}
	}
	if dateIdx == -1 || codeIdx == -1 {
		return nil, fmt.Errorf("mapping %s: header must carry a trade date and a contract column", path)
	}

	var entries []MappingEntry
	for _, row := range records[1:] {
		if len(row) <= dateIdx || len(row) <= codeIdx {
			continue
		}
		date, ok := parseMappingDate(row[dateIdx])
		if !ok {
			continue
		}
		entries = append(entries, MappingEntry{
			TradeDate: date,
			Contract:  stripExchangeSuffix(strings.TrimSpace(row[codeIdx])),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TradeDate.Before(entries[j].TradeDate) })
	return entries, nil
}

func parseMappingDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if d, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
