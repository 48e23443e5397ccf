package report

import (
	"encoding/json"
	"os"

	"github.com/seolens/seolens/pkg/models"
)

// SaveJSON writes an indented JSON export of the scan report to filepath
func SaveJSON(report *models.ScanReport, filepath string) error {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
