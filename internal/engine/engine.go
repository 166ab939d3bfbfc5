// Package engine builds the continuous main-contract series for one futures
// product: per-day selection of the most liquid contract, roll detection,
// and assembly of the stitched daily series.
package engine

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"mainline/internal/bars"
	"mainline/internal/catalog"
	"mainline/internal/domain"
)

// Universe selects how the trading-day set is derived.
type Universe string

const (
	// UniverseContractMonths uses one representative day per contract
	// delivery period.
	UniverseContractMonths Universe = "contract-months"
	// UniverseBarRows uses every trade date present in any contract's
	// bar table.
	UniverseBarRows Universe = "bar-rows"
)

// ErrEmptyUniverse is returned when no trading day can be derived from the
// discovered contracts. It aborts the run before any day is processed.
var ErrEmptyUniverse = errors.New("date universe is empty")

// Config wires an Engine. VolumeFiles/VolumeStore drive liquidity judgment;
// KlineFiles/KlineStore supply the bars stitched into the series. The two
// pairs may be identical.
type Config struct {
	Product            string
	AllowDeliveryMonth bool
	DateUniverse       Universe

	VolumeFiles []domain.ContractFile
	KlineFiles  []domain.ContractFile
	VolumeStore *bars.Store
	KlineStore  *bars.Store

	Log *slog.Logger
}

// Result carries everything one run produces.
type Result struct {
	Summary  domain.Summary
	Mapping  []domain.MainContractRecord
	Switches []domain.SwitchEvent
	Series   []domain.ContinuousRecord
}

// Engine executes one single-threaded pass over the date universe.
type Engine struct {
	cfg        Config
	klineIndex map[string]domain.ContractFile
	log        *slog.Logger
}

// New creates an Engine. The contract file sets are sorted by period key so
// the per-day scan order is deterministic.
func New(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("product", cfg.Product)

	catalog.Sort(cfg.VolumeFiles)
	catalog.Sort(cfg.KlineFiles)

	klineIndex := make(map[string]domain.ContractFile, len(cfg.KlineFiles))
	for _, f := range cfg.KlineFiles {
		klineIndex[f.ID.Code] = f
	}

	return &Engine{cfg: cfg, klineIndex: klineIndex, log: log}
}

// Run executes the full pipeline: date universe, per-day selection, roll
// detection, series assembly. It fails only on catalog-level fatal
// conditions; all per-contract and per-day problems are recovered locally
// and counted in the summary.
func (e *Engine) Run() (*Result, error) {
	universe, err := e.dateUniverse()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Summary: domain.Summary{
			RunID:     uuid.NewString(),
			Product:   e.cfg.Product,
			TotalDays: len(universe),
		},
		Switches: []domain.SwitchEvent{},
	}

	e.log.Info("starting continuous series build",
		"run_id", res.Summary.RunID,
		"days", len(universe),
		"volume_contracts", len(e.cfg.VolumeFiles),
		"kline_contracts", len(e.cfg.KlineFiles),
		"allow_delivery_month", e.cfg.AllowDeliveryMonth)

	var roll rollDetector
	for i, date := range universe {
		rec, ok := selectMain(date, e.cfg.VolumeFiles, e.cfg.VolumeStore, e.cfg.AllowDeliveryMonth)
		if !ok {
			res.Summary.NoMainDays++
			e.log.Warn("no main contract for trading day", "trade_date", date.Format("2006-01-02"))
			continue
		}
		res.Mapping = append(res.Mapping, rec)

		if ev, switched := roll.observe(rec, i); switched {
			res.Switches = append(res.Switches, ev)
			e.log.Info("main contract switch",
				"trade_date", ev.TradeDate.Format("2006-01-02"),
				"from", ev.From, "to", ev.To, "index", ev.Index)
		}
	}
	res.Summary.MappedDays = len(res.Mapping)
	res.Summary.Switches = len(res.Switches)

	symbol := e.cfg.Product + "9999"
	res.Series, res.Summary.BuildFailures = buildSeries(res.Mapping, e.klineIndex, e.cfg.KlineStore, symbol, e.log)

	res.Summary.LoadFailures = e.cfg.VolumeStore.LoadFailures()
	res.Summary.IntegrityWarnings = e.cfg.VolumeStore.IntegrityWarnings()
	if e.cfg.KlineStore != e.cfg.VolumeStore {
		res.Summary.LoadFailures += e.cfg.KlineStore.LoadFailures()
		res.Summary.IntegrityWarnings += e.cfg.KlineStore.IntegrityWarnings()
	}

	e.log.Info("continuous series build finished",
		"run_id", res.Summary.RunID,
		"total_days", res.Summary.TotalDays,
		"mapped_days", res.Summary.MappedDays,
		"switches", res.Summary.Switches,
		"no_main_days", res.Summary.NoMainDays,
		"build_failures", res.Summary.BuildFailures,
		"integrity_warnings", res.Summary.IntegrityWarnings,
		"load_failures", res.Summary.LoadFailures)

	return res, nil
}

// dateUniverse derives the sorted, duplicate-free trading-day set.
func (e *Engine) dateUniverse() ([]time.Time, error) {
	var dates []time.Time

	switch e.cfg.DateUniverse {
	case UniverseBarRows:
		seen := make(map[time.Time]bool)
		for _, f := range e.cfg.KlineFiles {
			for _, d := range e.cfg.KlineStore.Dates(f) {
				if !seen[d] {
					seen[d] = true
					dates = append(dates, d)
				}
			}
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	default:
		dates = catalog.PeriodDates(e.cfg.KlineFiles)
	}

	if len(dates) == 0 {
		return nil, ErrEmptyUniverse
	}
	return dates, nil
}
