package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/seolens/seolens/pkg/models"
)

// SaveCSV writes the scan's signals as flat rows: one row per field of
// each signal payload. The long format keeps heterogeneous payloads in a
// single file.
func SaveCSV(report *models.ScanReport, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"scan_id", "url", "scanned_at", "signal", "field", "value"}); err != nil {
		return err
	}

	scannedAt := report.ScannedAt.Format(time.RFC3339)
	for _, signal := range report.Signals {
		name, _ := signal["type"].(string)

		keys := make([]string, 0, len(signal))
		for k := range signal {
			switch k {
			case "type", "url", "collected_at":
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			row := []string{report.ScanID, report.URL, scannedAt, name, k, fmt.Sprintf("%v", signal[k])}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	return nil
}
