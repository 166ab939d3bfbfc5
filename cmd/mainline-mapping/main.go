// Command mainline-mapping fetches the provider's daily main-contract
// mapping for a product and saves it as CSV, oldest row first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"mainline/internal/config"
	"mainline/internal/provider"
	"mainline/internal/util"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "optional YAML config file")
		tsCode    = flag.String("ts-code", "", "product code with exchange qualifier, e.g. RB.SHF")
		outputDir = flag.String("output-dir", "", "directory for the mapping CSV")
		token     = flag.String("token", "", "provider API token (overrides config and TUSHARE_TOKEN)")
	)
	flag.Parse()

	if *tsCode == "" {
		fmt.Fprintln(os.Stderr, "usage: mainline-mapping -ts-code RB.SHF [-output-dir DIR]")
		os.Exit(1)
	}

	cfg := loadConfig(*cfgPath)
	if *outputDir != "" {
		cfg.Data.OutputDir = *outputDir
	}
	if *token != "" {
		cfg.Provider.Token = *token
	}

	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	if cfg.Provider.Token == "" {
		log.Error("provider token is required (config, -token, or TUSHARE_TOKEN)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := provider.NewClient(cfg.Provider, log)
	entries, err := client.FutMapping(ctx, *tsCode)
	if err != nil {
		log.Error("fetching mapping", "ts_code", *tsCode, "error", err)
		os.Exit(1)
	}

	name := "mapping_" + strings.SplitN(*tsCode, ".", 2)[0] + ".csv"
	path := filepath.Join(cfg.Data.OutputDir, name)
	if err := provider.WriteMappingCSV(path, entries); err != nil {
		log.Error("saving mapping", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Printf("saved %d mapping rows to %s\n", len(entries), path)
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
