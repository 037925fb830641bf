package srtb

import (
	"bytes"
	"encoding/json"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/speeds"
)

// TriggersData is the payload the game reads from a speed-trigger entry.
type TriggersData struct {
	Triggers []speeds.Trigger `json:"Triggers"`
}

// EncodePayload serializes triggers into the string stored in a chart.
func EncodePayload(triggers []speeds.Trigger) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(TriggersData{Triggers: nonNil(triggers)}); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// DecodePayload parses a stored speed-trigger payload.
func DecodePayload(payload string) ([]speeds.Trigger, error) {
	var data TriggersData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, &apperr.DocumentError{Cause: err}
	}
	return data.Triggers, nil
}
