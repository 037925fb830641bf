package index

import "github.com/starford/srtbspeeds/internal/models"

// ChartIndex defines the interface for chart catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ChartIndex interface {
	UpsertChart(c ChartRow, speeds []models.ChartSpeeds) error
	DeleteChart(path string) error
	GetChecksum(path string) (string, error)
	GetChart(path string) (*models.Chart, error)
	ListCharts() ([]models.Chart, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ChartIndex at compile time.
var _ ChartIndex = (*DB)(nil)
