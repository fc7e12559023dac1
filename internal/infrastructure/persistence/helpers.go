package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// nullableString converts an optional string to a driver value
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// stringPtr converts a scanned nullable column back to an optional string
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullableJSON serializes v to JSON text, or nil when v is empty
func nullableJSON(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(val) == 0 {
			return nil, nil
		}
		return string(val), nil
	case []string:
		if val == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JSON column: %w", err)
	}
	return string(b), nil
}

// rawJSON converts a scanned nullable column to a verbatim JSON payload
func rawJSON(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

// stringSlice decodes a scanned nullable column into a string slice
func stringSlice(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, fmt.Errorf("failed to decode JSON column: %w", err)
	}
	return out, nil
}
