package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mainline/internal/domain"
)

// Compile-time interface check.
var _ ResultWriter = (*CSVStore)(nil)

// CSVStore writes run artifacts as CSV files under one output directory,
// using the historical file naming: <PRODUCT>9999.csv,
// <PRODUCT>_main_contract_mapping.csv, <PRODUCT>_main_contract_switches.csv.
type CSVStore struct {
	OutputDir string
}

// NewCSVStore creates a CSVStore rooted at the given output directory.
func NewCSVStore(outputDir string) *CSVStore {
	return &CSVStore{OutputDir: outputDir}
}

// SeriesPath returns the continuous-series file path for a product.
func (s *CSVStore) SeriesPath(product string) string {
	return filepath.Join(s.OutputDir, product+"9999.csv")
}

// MappingPath returns the daily-mapping file path for a product.
func (s *CSVStore) MappingPath(product string) string {
	return filepath.Join(s.OutputDir, product+"_main_contract_mapping.csv")
}

// SwitchesPath returns the switch-log file path for a product.
func (s *CSVStore) SwitchesPath(product string) string {
	return filepath.Join(s.OutputDir, product+"_main_contract_switches.csv")
}

// WriteSeries writes the continuous series CSV.
func (s *CSVStore) WriteSeries(_ context.Context, product string, series []domain.ContinuousRecord) error {
	rows := make([][]string, 0, len(series)+1)
	rows = append(rows, []string{"trade_date", "open", "high", "low", "close", "volume", "open_interest", "symbol", "original_contract"})
	for _, r := range series {
		rows = append(rows, []string{
			r.TradeDate.Format("2006-01-02"),
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			formatFloat(r.Volume),
			formatFloat(r.OpenInterest),
			r.Symbol,
			r.OriginalContract,
		})
	}
	return s.writeFile(s.SeriesPath(product), rows)
}

// WriteMapping writes the daily main-contract mapping CSV.
func (s *CSVStore) WriteMapping(_ context.Context, product string, mapping []domain.MainContractRecord) error {
	rows := make([][]string, 0, len(mapping)+1)
	rows = append(rows, []string{"trade_date", "main_contract", "volume"})
	for _, r := range mapping {
		rows = append(rows, []string{
			r.TradeDate.Format("2006-01-02"),
			r.Contract,
			formatFloat(r.Volume),
		})
	}
	return s.writeFile(s.MappingPath(product), rows)
}

// WriteSwitches writes the switch log CSV. With zero switches the file still
// gets written with its header row.
func (s *CSVStore) WriteSwitches(_ context.Context, product string, switches []domain.SwitchEvent) error {
	rows := make([][]string, 0, len(switches)+1)
	rows = append(rows, []string{"date", "from_contract", "to_contract", "switch_index"})
	for _, ev := range switches {
		rows = append(rows, []string{
			ev.TradeDate.Format("2006-01-02"),
			ev.From,
			ev.To,
			strconv.Itoa(ev.Index),
		})
	}
	return s.writeFile(s.SwitchesPath(product), rows)
}

func (s *CSVStore) writeFile(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
