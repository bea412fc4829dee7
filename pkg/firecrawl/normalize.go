package firecrawl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the wrapped form of every response: {"success":..,"data":..}.
type envelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// decodeResults accepts a bare array, {"data": [...]} or {"data": {"web": [...]}}.
func decodeResults(raw json.RawMessage) ([]Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var results []Result
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		return results, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Success != nil && !*env.Success {
			return nil, fmt.Errorf("search failed: %s", env.Error)
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, nil
		}
		if data[0] == '[' {
			return decodeResults(data)
		}
		var grouped struct {
			Web []Result `json:"web"`
		}
		if err := json.Unmarshal(data, &grouped); err != nil {
			return nil, fmt.Errorf("decode grouped results: %w", err)
		}
		return grouped.Web, nil
	}
	return nil, errUnexpectedShape
}

// decodeDocument accepts {"data": {...}} or a flat document.
func decodeDocument(raw json.RawMessage) (*Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, errUnexpectedShape
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("scrape failed: %s", env.Error)
	}

	body := raw
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '{' {
		body = data
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// metaString reads the first string value under any of keys. Some API
// versions return lists for Open Graph fields.
func metaString(meta map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := meta[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
