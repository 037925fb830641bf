// Package srtb reads and edits Spin Rhythm track bundles (.srtb).
//
// A bundle is a JSON document with two containers. Only the large string
// values are edited here; unity object values pass through untouched.
package srtb

import (
	"bytes"
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/srtbspeeds/internal/apperr"
)

// Document is a parsed chart bundle.
type Document struct {
	UnityObjectValuesContainer *UnityObjectValuesContainer `json:"unityObjectValuesContainer"`
	LargeStringValuesContainer *LargeStringValuesContainer `json:"largeStringValuesContainer"`
}

// UnityObjectValuesContainer holds the serialized Unity objects of a chart.
type UnityObjectValuesContainer struct {
	Values []UnityObjectValue `json:"values"`
}

// UnityObjectValue is an opaque reference to a Unity object.
type UnityObjectValue struct {
	Key      string `json:"key"`
	JSONKey  string `json:"jsonKey"`
	FullType string `json:"fullType"`
}

// LargeStringValuesContainer holds free-form string entries keyed by name.
type LargeStringValuesContainer struct {
	Values []LargeStringValue `json:"values"`
}

// LargeStringValue is a single keyed string payload.
type LargeStringValue struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Validate checks that both containers are present.
func (d *Document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.UnityObjectValuesContainer, validation.NotNil),
		validation.Field(&d.LargeStringValuesContainer, validation.NotNil),
	)
}

// Parse decodes a chart bundle. Failures are *apperr.DocumentError.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &apperr.DocumentError{Cause: err}
	}
	if err := doc.Validate(); err != nil {
		return nil, &apperr.DocumentError{Cause: err}
	}
	return &doc, nil
}

// Marshal encodes doc as compact JSON without HTML escaping.
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("srtb: nil document")
	}
	out := *doc
	out.UnityObjectValuesContainer = &UnityObjectValuesContainer{
		Values: nonNil(doc.unityValues()),
	}
	out.LargeStringValuesContainer = &LargeStringValuesContainer{
		Values: nonNil(doc.largeValues()),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (d *Document) unityValues() []UnityObjectValue {
	if d.UnityObjectValuesContainer == nil {
		return nil
	}
	return d.UnityObjectValuesContainer.Values
}

func (d *Document) largeValues() []LargeStringValue {
	if d.LargeStringValuesContainer == nil {
		return nil
	}
	return d.LargeStringValuesContainer.Values
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
