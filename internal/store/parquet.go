package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"mainline/internal/domain"
)

// Compile-time interface check.
var _ ResultWriter = (*ParquetStore)(nil)

// ParquetStore writes run artifacts as Parquet files under one output
// directory, mirroring the CSV file naming with a .parquet extension.
type ParquetStore struct {
	OutputDir string
}

// NewParquetStore creates a ParquetStore rooted at the given output directory.
func NewParquetStore(outputDir string) *ParquetStore {
	return &ParquetStore{OutputDir: outputDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// ContinuousRow is the Parquet schema for the continuous series.
type ContinuousRow struct {
	TradeDate        int64   `parquet:"trade_date,timestamp(millisecond)"` // Unix ms
	Open             float64 `parquet:"open"`
	High             float64 `parquet:"high"`
	Low              float64 `parquet:"low"`
	Close            float64 `parquet:"close"`
	Volume           float64 `parquet:"volume"`
	OpenInterest     float64 `parquet:"open_interest"`
	Symbol           string  `parquet:"symbol"`
	OriginalContract string  `parquet:"original_contract"`
}

// MappingRow is the Parquet schema for the daily mapping.
type MappingRow struct {
	TradeDate    int64   `parquet:"trade_date,timestamp(millisecond)"` // Unix ms
	MainContract string  `parquet:"main_contract"`
	Volume       float64 `parquet:"volume"`
}

// SwitchRow is the Parquet schema for the switch log.
type SwitchRow struct {
	TradeDate    int64  `parquet:"date,timestamp(millisecond)"` // Unix ms
	FromContract string `parquet:"from_contract"`
	ToContract   string `parquet:"to_contract"`
	SwitchIndex  int32  `parquet:"switch_index"`
}

// ---------------------------------------------------------------------------
// ResultWriter implementation
// ---------------------------------------------------------------------------

// WriteSeries writes the continuous series Parquet file.
func (s *ParquetStore) WriteSeries(_ context.Context, product string, series []domain.ContinuousRecord) error {
	rows := make([]ContinuousRow, len(series))
	for i, r := range series {
		rows[i] = ContinuousRow{
			TradeDate:        r.TradeDate.UnixMilli(),
			Open:             r.Open,
			High:             r.High,
			Low:              r.Low,
			Close:            r.Close,
			Volume:           r.Volume,
			OpenInterest:     r.OpenInterest,
			Symbol:           r.Symbol,
			OriginalContract: r.OriginalContract,
		}
	}
	return writeParquetFile(filepath.Join(s.OutputDir, product+"9999.parquet"), rows)
}

// WriteMapping writes the daily mapping Parquet file.
func (s *ParquetStore) WriteMapping(_ context.Context, product string, mapping []domain.MainContractRecord) error {
	rows := make([]MappingRow, len(mapping))
	for i, r := range mapping {
		rows[i] = MappingRow{
			TradeDate:    r.TradeDate.UnixMilli(),
			MainContract: r.Contract,
			Volume:       r.Volume,
		}
	}
	return writeParquetFile(filepath.Join(s.OutputDir, product+"_main_contract_mapping.parquet"), rows)
}

// WriteSwitches writes the switch log Parquet file. Zero switches still
// produce a file carrying the schema and no rows.
func (s *ParquetStore) WriteSwitches(_ context.Context, product string, switches []domain.SwitchEvent) error {
	rows := make([]SwitchRow, len(switches))
	for i, ev := range switches {
		rows[i] = SwitchRow{
			TradeDate:    ev.TradeDate.UnixMilli(),
			FromContract: ev.From,
			ToContract:   ev.To,
			SwitchIndex:  int32(ev.Index),
		}
	}
	return writeParquetFile(filepath.Join(s.OutputDir, product+"_main_contract_switches.parquet"), rows)
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadParquetFile reads a whole Parquet artifact back; used by consumers and
// tests.
func ReadParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
