// Command mainline-compare checks a locally built main-contract mapping
// against a reference mapping, either a provider fetch or a second CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mainline/internal/config"
	"mainline/internal/domain"
	"mainline/internal/provider"
	"mainline/internal/util"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "optional YAML config file")
		localPath  = flag.String("local", "", "locally built mapping CSV")
		remotePath = flag.String("remote", "", "reference mapping CSV (alternative to -ts-code)")
		tsCode     = flag.String("ts-code", "", "fetch the reference mapping from the provider, e.g. RB.SHF")
		resultPath = flag.String("result", "compare_futting_map.csv", "comparison output CSV")
	)
	flag.Parse()

	if *localPath == "" || (*remotePath == "" && *tsCode == "") {
		fmt.Fprintln(os.Stderr, "usage: mainline-compare -local MAPPING.csv (-remote REF.csv | -ts-code RB.SHF) [-result OUT.csv]")
		os.Exit(1)
	}

	cfg := loadConfig(*cfgPath)
	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	localEntries, err := provider.LoadMappingCSV(*localPath)
	if err != nil {
		log.Error("loading local mapping", "error", err)
		os.Exit(1)
	}
	local := make([]domain.MainContractRecord, len(localEntries))
	for i, e := range localEntries {
		local[i] = domain.MainContractRecord{TradeDate: e.TradeDate, Contract: e.Contract}
	}

	var remote []provider.MappingEntry
	if *remotePath != "" {
		remote, err = provider.LoadMappingCSV(*remotePath)
		if err != nil {
			log.Error("loading reference mapping", "error", err)
			os.Exit(1)
		}
	} else {
		remote, err = provider.NewClient(cfg.Provider, log).FutMapping(ctx, *tsCode)
		if err != nil {
			log.Error("fetching reference mapping", "ts_code", *tsCode, "error", err)
			os.Exit(1)
		}
	}

	res := provider.Compare(local, remote)
	if err := provider.WriteCompareCSV(ctx, *resultPath, res); err != nil {
		log.Error("writing comparison", "path", *resultPath, "error", err)
		os.Exit(1)
	}

	fmt.Printf("%d dates match, %d disagree; details in %s\n", res.Matched, len(res.Mismatches), *resultPath)
	if !res.Clean() {
		os.Exit(2)
	}
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
