// Package models defines the domain types for srtbspeeds.
package models

import "time"

// ChartMetadata is a lightweight representation returned by library listings.
type ChartMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChartSpeeds summarises the speed triggers stored under one key of a chart.
type ChartSpeeds struct {
	Key          string  `json:"key"`
	Difficulty   string  `json:"difficulty,omitempty"`
	TriggerCount int     `json:"trigger_count"`
	FirstTime    float32 `json:"first_time"`
	LastTime     float32 `json:"last_time"`
}

// Chart is a catalogued chart and the speed-trigger entries it carries.
type Chart struct {
	Path      string        `json:"path"`
	Checksum  string        `json:"checksum"`
	UpdatedAt time.Time     `json:"updated_at"`
	Speeds    []ChartSpeeds `json:"speeds"`
}
