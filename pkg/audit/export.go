package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// Export writes events to w in format.
func Export(w io.Writer, events []*Event, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	case FormatCSV:
		return exportCSV(w, events)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func exportCSV(w io.Writer, events []*Event) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	header := []string{"ID", "Timestamp", "Actor", "Action", "ResourceType", "ResourceID", "Status", "Message", "Hash"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.Actor,
			string(e.Action),
			string(e.ResourceType),
			e.ResourceID,
			string(e.Status),
			e.Message,
			e.Hash,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
