package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadContractList reads contract codes from the "symbol" column of a CSV
// file with a header row. Only names are read; no dates are compared. Rows
// starting with '#' and blank symbol cells are skipped.
func LoadContractList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening contract list %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading contract list %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("contract list %s is empty", path)
	}

	symbolIdx := -1
	for i, col := range records[0] {
		if strings.EqualFold(strings.TrimSpace(col), "symbol") {
			symbolIdx = i
			break
		}
	}
	if symbolIdx == -1 {
		return nil, fmt.Errorf("contract list %s has no symbol column", path)
	}

	var contracts []string
	for _, row := range records[1:] {
		if len(row) <= symbolIdx {
			continue
		}
		if sym := strings.TrimSpace(row[symbolIdx]); sym != "" {
			contracts = append(contracts, sym)
		}
	}
	return contracts, nil
}

// MissingContracts returns the listed contracts that have no discovered file,
// in list order.
func MissingContracts(list []string, files map[string]bool) []string {
	var missing []string
	for _, c := range list {
		if !files[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
