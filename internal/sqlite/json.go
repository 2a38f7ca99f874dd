package sqlite

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are the formats accepted when reading a timestamp column.
// CURRENT_TIMESTAMP produces the first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q", s)
}

// encodeEntries serializes a snapshot's entries as a JSON object. A nil map
// is stored as an empty object.
func encodeEntries(entries map[string]string) (string, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling state: %w", err)
	}
	return string(data), nil
}

func decodeEntries(data string) (map[string]string, error) {
	entries := map[string]string{}
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("unmarshaling state: %w", err)
	}
	return entries, nil
}
