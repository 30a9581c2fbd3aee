// Package httpjson provides JSON response helpers
package httpjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// JSON is a convenience alias for a generic JSON object
type JSON map[string]any

// encodeJSON encodes data to JSON with HTML escaping enabled
func encodeJSON(data any) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return nil, fmt.Errorf("json encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

// writeResponse writes JSON bytes with status code
func writeResponse(w http.ResponseWriter, data []byte, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if code != 0 {
		w.WriteHeader(code)
	}
	_, _ = w.Write(data)
}

// WriteJSON encodes and writes JSON to the response with HTTP 200
func WriteJSON(w http.ResponseWriter, data any) {
	WriteJSONWithStatus(w, 0, data)
}

// WriteJSONWithStatus encodes and writes JSON with the given HTTP status code
func WriteJSONWithStatus(w http.ResponseWriter, code int, data any) {
	encoded, err := encodeJSON(data)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeResponse(w, encoded, code)
}
