package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportFormat represents the format for exporting audit logs
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatJSONL ExportFormat = "jsonl" // JSON Lines (one JSON object per line)
	FormatCSV   ExportFormat = "csv"
)

// Export writes events in format.
func Export(writer io.Writer, events []*Event, format ExportFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)
	case FormatJSONL:
		return exportJSONL(writer, events)
	case FormatCSV:
		return exportCSV(writer, events)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportJSONL(writer io.Writer, events []*Event) error {
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func exportCSV(writer io.Writer, events []*Event) (retErr error) {
	csvWriter := csv.NewWriter(writer)
	defer func() {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	header := []string{"ID", "Timestamp", "Actor", "Action", "ResourceType", "ResourceID", "Status", "ErrorMessage"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, event := range events {
		record := []string{
			event.ID,
			event.Timestamp.Format(time.RFC3339),
			event.Actor,
			string(event.Action),
			string(event.ResourceType),
			event.ResourceID,
			string(event.Status),
			event.ErrorMessage,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return nil
}
