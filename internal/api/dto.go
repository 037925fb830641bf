package api

import (
	"github.com/starford/srtbspeeds/internal/chartservice"
	"github.com/starford/srtbspeeds/internal/models"
)

// EventPublisher is notified of chart edits made through the API.
type EventPublisher interface {
	PublishChartEvent(kind, path, key string)
}

// Chart is the catalog entry response type (aliased from the domain layer).
type Chart = models.Chart

// IntegrateResult is the response body of a successful integration
// (aliased from the domain layer).
type IntegrateResult = chartservice.Result

// ExportResult is the response body of a sidecar export.
type ExportResult struct {
	Path    string `json:"path"`
	Sidecar string `json:"sidecar"`
	Key     string `json:"key"`
}

// ChartListResponse wraps catalog listings.
type ChartListResponse struct {
	Charts []Chart `json:"charts" validate:"required"`
	Total  int     `json:"total" example:"42" validate:"required"`
}
