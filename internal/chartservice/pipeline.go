// Package chartservice sequences speeds conversion and chart edits.
//
// The pipeline functions work on in-memory bytes only; Service binds them to
// a chart library and its catalog.
package chartservice

import (
	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/speeds"
	"github.com/starford/srtbspeeds/internal/srtb"
)

// IntegrateSpeeds stores speedsText under key in chart and returns the new
// chart bytes together with the number of triggers embedded.
func IntegrateSpeeds(chart []byte, speedsText, key string) ([]byte, int, error) {
	triggers, err := speeds.Decode(speedsText)
	if err != nil {
		return nil, 0, err
	}
	payload, err := srtb.EncodePayload(triggers)
	if err != nil {
		return nil, 0, err
	}
	doc, err := srtb.Parse(chart)
	if err != nil {
		return nil, 0, err
	}
	doc.Integrate(key, payload)
	out, err := srtb.Marshal(doc)
	if err != nil {
		return nil, 0, err
	}
	return out, len(triggers), nil
}

// ExtractSpeeds returns the speeds text stored under key, along with the
// decoded triggers. A missing key yields apperr.ErrNotFound.
func ExtractSpeeds(chart []byte, key string) (string, []speeds.Trigger, error) {
	doc, err := srtb.Parse(chart)
	if err != nil {
		return "", nil, err
	}
	payload, ok := doc.Extract(key)
	if !ok {
		return "", nil, apperr.ErrNotFound
	}
	triggers, err := srtb.DecodePayload(payload)
	if err != nil {
		return "", nil, err
	}
	return speeds.Encode(triggers), triggers, nil
}

// RemoveSpeeds deletes the entry stored under key and returns the new chart
// bytes. A missing key yields apperr.ErrNotFound.
func RemoveSpeeds(chart []byte, key string) ([]byte, error) {
	doc, err := srtb.Parse(chart)
	if err != nil {
		return nil, err
	}
	if !doc.Remove(key) {
		return nil, apperr.ErrNotFound
	}
	return srtb.Marshal(doc)
}
