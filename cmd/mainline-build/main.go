// Command mainline-build constructs the continuous main-contract series for
// one futures product from a directory of per-contract daily CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"mainline/internal/bars"
	"mainline/internal/catalog"
	"mainline/internal/config"
	"mainline/internal/domain"
	"mainline/internal/engine"
	"mainline/internal/store"
	"mainline/internal/util"
)

func main() {
	var (
		cfgPath       = flag.String("config", "", "optional YAML config file")
		volumeDir     = flag.String("volume-dir", "", "directory of per-contract files used to judge liquidity")
		klineDir      = flag.String("kline-dir", "", "directory of per-contract files stitched into the series (defaults to volume-dir)")
		outputDir     = flag.String("output-dir", "", "directory for result files")
		product       = flag.String("product", "", "futures product code, e.g. RB")
		allowDelivery = flag.Bool("allow-delivery-month", false, "allow a contract in its delivery month to be the main contract")
		contractList  = flag.String("contract-list", "", "optional CSV with a symbol column; listed contracts must exist in both directories")
		suffixMode    = flag.String("suffix-mode", "", "contract suffix interpretation: year-month or year-day")
		dateUniverse  = flag.String("date-universe", "", "trading-day set: contract-months or bar-rows")
		formats       = flag.String("formats", "", "comma-separated result sinks: csv,parquet,sqlite")
		sqlitePath    = flag.String("sqlite-path", "", "sqlite database path (required for the sqlite sink)")
	)
	flag.Parse()

	cfg := loadConfig(*cfgPath)

	if *volumeDir != "" {
		cfg.Data.VolumeDir = *volumeDir
	}
	if *klineDir != "" {
		cfg.Data.KlineDir = *klineDir
	}
	if *outputDir != "" {
		cfg.Data.OutputDir = *outputDir
	}
	if *sqlitePath != "" {
		cfg.Data.SQLitePath = *sqlitePath
	}
	if *product != "" {
		cfg.Build.Product = *product
	}
	if *contractList != "" {
		cfg.Build.ContractList = *contractList
	}
	if *suffixMode != "" {
		cfg.Build.SuffixMode = *suffixMode
	}
	if *dateUniverse != "" {
		cfg.Build.DateUniverse = *dateUniverse
	}
	if *formats != "" {
		cfg.Build.Formats = strings.Split(*formats, ",")
	}
	isSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { isSet[f.Name] = true })
	if isSet["allow-delivery-month"] {
		cfg.Build.AllowDeliveryMonth = *allowDelivery
	}
	if cfg.Data.KlineDir == "" {
		cfg.Data.KlineDir = cfg.Data.VolumeDir
	}

	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	mode := catalog.SuffixMode(cfg.Build.SuffixMode)

	volumeFiles, err := catalog.Discover(cfg.Data.VolumeDir, cfg.Build.Product, mode)
	if err != nil {
		log.Error("discovering volume contracts", "error", err)
		os.Exit(1)
	}
	klineFiles := volumeFiles
	if cfg.Data.KlineDir != cfg.Data.VolumeDir {
		klineFiles, err = catalog.Discover(cfg.Data.KlineDir, cfg.Build.Product, mode)
		if err != nil {
			log.Error("discovering kline contracts", "error", err)
			os.Exit(1)
		}
	}
	log.Info("discovered contracts",
		"volume_contracts", len(volumeFiles), "kline_contracts", len(klineFiles))

	if cfg.Build.ContractList != "" {
		if err := validateContractList(cfg.Build.ContractList, volumeFiles, klineFiles); err != nil {
			log.Error("contract list validation failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("no contract list given, skipping completeness validation")
	}

	volumeStore := bars.NewStore(log)
	klineStore := volumeStore
	if cfg.Data.KlineDir != cfg.Data.VolumeDir {
		klineStore = bars.NewStore(log)
	}

	eng := engine.New(engine.Config{
		Product:            cfg.Build.Product,
		AllowDeliveryMonth: cfg.Build.AllowDeliveryMonth,
		DateUniverse:       engine.Universe(cfg.Build.DateUniverse),
		VolumeFiles:        volumeFiles,
		KlineFiles:         klineFiles,
		VolumeStore:        volumeStore,
		KlineStore:         klineStore,
		Log:                log,
	})

	res, err := eng.Run()
	if err != nil {
		log.Error("build failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for _, format := range cfg.Build.Formats {
		w, closeFn, err := newWriter(format, cfg)
		if err != nil {
			log.Error("opening result sink", "format", format, "error", err)
			os.Exit(1)
		}
		err = store.WriteResult(ctx, w, cfg.Build.Product, res.Mapping, res.Switches, res.Series)
		if closeFn != nil {
			closeFn()
		}
		if err != nil {
			log.Error("writing results", "format", format, "error", err)
			os.Exit(1)
		}
		log.Info("results written", "format", format, "output_dir", cfg.Data.OutputDir)
	}

	s := res.Summary
	fmt.Printf("run %s: %d trading days, %d mapped, %d switches\n", s.RunID, s.TotalDays, s.MappedDays, s.Switches)
	fmt.Printf("failures: %d no-main days, %d build failures, %d integrity warnings, %d load failures\n",
		s.NoMainDays, s.BuildFailures, s.IntegrityWarnings, s.LoadFailures)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		if p := os.Getenv("MAINLINE_CONFIG"); p != "" {
			path = p
		}
	}
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func validateContractList(path string, volumeFiles, klineFiles []domain.ContractFile) error {
	list, err := catalog.LoadContractList(path)
	if err != nil {
		return err
	}

	have := func(files []domain.ContractFile) map[string]bool {
		m := make(map[string]bool, len(files))
		for _, f := range files {
			m[f.ID.Code] = true
		}
		return m
	}

	if missing := catalog.MissingContracts(list, have(volumeFiles)); len(missing) > 0 {
		return fmt.Errorf("volume data is missing contracts: %s", strings.Join(missing, ", "))
	}
	if missing := catalog.MissingContracts(list, have(klineFiles)); len(missing) > 0 {
		return fmt.Errorf("kline data is missing contracts: %s", strings.Join(missing, ", "))
	}
	return nil
}

func newWriter(format string, cfg *config.Config) (store.ResultWriter, func(), error) {
	switch format {
	case "csv":
		return store.NewCSVStore(cfg.Data.OutputDir), nil, nil
	case "parquet":
		return store.NewParquetStore(cfg.Data.OutputDir), nil, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Data.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}
}
