package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders in-memory records as an indented JSON document.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render marshals records; a nil slice is written as an empty array.
func (e *JSONExporter) Render(records interface{}) ([]byte, error) {
	if records == nil {
		return []byte("[]"), nil
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	if string(payload) == "null" {
		return []byte("[]"), nil
	}
	return payload, nil
}

// ContentType reports the MIME type of rendered output.
func (e *JSONExporter) ContentType() string {
	return "application/json; charset=utf-8"
}
