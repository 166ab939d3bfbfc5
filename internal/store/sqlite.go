package store

import (
	"context"
	"database/sql"
	"fmt"

	"mainline/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultWriter = (*SQLiteStore)(nil)

// SQLiteStore persists run artifacts into three SQLite tables keyed by
// (product, trade_date), so re-running a build upserts instead of
// duplicating.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS continuous_bars (
	product           TEXT NOT NULL,
	trade_date        TEXT NOT NULL,
	open              REAL,
	high              REAL,
	low               REAL,
	close             REAL,
	volume            REAL,
	open_interest     REAL,
	symbol            TEXT NOT NULL,
	original_contract TEXT NOT NULL,
	PRIMARY KEY (product, trade_date)
);
CREATE TABLE IF NOT EXISTS main_contract_mapping (
	product       TEXT NOT NULL,
	trade_date    TEXT NOT NULL,
	main_contract TEXT NOT NULL,
	volume        REAL,
	PRIMARY KEY (product, trade_date)
);
CREATE TABLE IF NOT EXISTS contract_switches (
	product       TEXT NOT NULL,
	trade_date    TEXT NOT NULL,
	from_contract TEXT NOT NULL,
	to_contract   TEXT NOT NULL,
	switch_index  INTEGER NOT NULL,
	PRIMARY KEY (product, trade_date)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteSeries upserts the continuous series rows.
func (s *SQLiteStore) WriteSeries(ctx context.Context, product string, series []domain.ContinuousRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO continuous_bars
			(product, trade_date, open, high, low, close, volume, open_interest, symbol, original_contract)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range series {
			if _, err := stmt.ExecContext(ctx, product, r.TradeDate.Format("2006-01-02"),
				r.Open, r.High, r.Low, r.Close, r.Volume, r.OpenInterest,
				r.Symbol, r.OriginalContract); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMapping upserts the daily mapping rows.
func (s *SQLiteStore) WriteMapping(ctx context.Context, product string, mapping []domain.MainContractRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO main_contract_mapping
			(product, trade_date, main_contract, volume) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range mapping {
			if _, err := stmt.ExecContext(ctx, product, r.TradeDate.Format("2006-01-02"),
				r.Contract, r.Volume); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSwitches replaces the product's switch rows. Clearing first keeps the
// table consistent with a re-run that produced fewer switches; zero switches
// leave an empty table, never a missing one.
func (s *SQLiteStore) WriteSwitches(ctx context.Context, product string, switches []domain.SwitchEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contract_switches WHERE product = ?`, product); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO contract_switches
			(product, trade_date, from_contract, to_contract, switch_index) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, ev := range switches {
			if _, err := stmt.ExecContext(ctx, product, ev.TradeDate.Format("2006-01-02"),
				ev.From, ev.To, ev.Index); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountRows returns the number of rows a table holds for one product; used
// by callers reporting persistence results.
func (s *SQLiteStore) CountRows(ctx context.Context, table, product string) (int, error) {
	switch table {
	case "continuous_bars", "main_contract_mapping", "contract_switches":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE product = ?`, product).Scan(&n)
	return n, err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
