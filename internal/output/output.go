// Package output serializes the extracted record set. Encoding is a thin
// wrapper over already-built records; all filtering happens upstream.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ternarybob/vitals/internal/models"
)

// csvHeader is the fixed column header of the tabular output.
var csvHeader = []string{"record_type", "value", "unit", "start_date", "end_date", "metadata"}

// WriteJSON writes the full ordered record sequence as an indented JSON
// document at path.
func WriteJSON(path string, records []models.HealthRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records as JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON output %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the record sequence as tabular text at path. The
// metadata column holds the record's metadata map encoded as JSON.
func WriteCSV(path string, records []models.HealthRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", rec.Type, err)
		}
		row := []string{rec.Type, rec.Value, rec.Unit, rec.StartDate, rec.EndDate, string(meta)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush CSV output %s: %w", path, err)
	}
	return nil
}
