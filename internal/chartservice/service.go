package chartservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/index"
	"github.com/starford/srtbspeeds/internal/models"
	"github.com/starford/srtbspeeds/internal/storage"
)

// Result describes a completed integration.
type Result struct {
	Path         string `json:"path"`
	Key          string `json:"key"`
	Difficulty   string `json:"difficulty"`
	TriggerCount int    `json:"trigger_count"`
}

// Service coordinates library storage and catalog operations.
type Service struct {
	store  storage.Provider
	db     index.ChartIndex
	logger *slog.Logger
}

// NewService creates a new chart service. A nil logger falls back to
// slog.Default.
func NewService(store storage.Provider, db index.ChartIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, logger: logger}
}

// Integrate embeds speedsText into the chart at path under d's key.
func (s *Service) Integrate(_ context.Context, path string, d difficulty.Difficulty, speedsText string) (*Result, error) {
	key := d.Key()
	var count int
	var written []byte
	err := s.store.Update(path, func(chart []byte) ([]byte, error) {
		out, n, err := IntegrateSpeeds(chart, speedsText, key)
		if err != nil {
			return nil, err
		}
		count, written = n, out
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	s.reindex(path, written)
	s.logger.Info("speeds integrated",
		slog.String("path", path),
		slog.String("key", key),
		slog.Int("triggers", count))
	return &Result{Path: path, Key: key, Difficulty: d.String(), TriggerCount: count}, nil
}

// Extract returns the speeds text stored in the chart at path under d's key.
func (s *Service) Extract(_ context.Context, path string, d difficulty.Difficulty) (string, error) {
	chart, err := s.store.Read(path)
	if err != nil {
		return "", err
	}
	text, _, err := ExtractSpeeds(chart, d.Key())
	return text, err
}

// Remove deletes d's speed triggers from the chart at path. When the chart
// holds none, apperr.ErrNotFound is returned and the file is left untouched.
func (s *Service) Remove(_ context.Context, path string, d difficulty.Difficulty) error {
	key := d.Key()
	var written []byte
	err := s.store.Update(path, func(chart []byte) ([]byte, error) {
		out, err := RemoveSpeeds(chart, key)
		if err != nil {
			return nil, err
		}
		written = out
		return out, nil
	})
	if err != nil {
		return err
	}
	s.reindex(path, written)
	s.logger.Info("speeds removed", slog.String("path", path), slog.String("key", key))
	return nil
}

// ListCharts returns the catalogued charts.
func (s *Service) ListCharts(_ context.Context) ([]models.Chart, error) {
	charts, err := s.db.ListCharts()
	if err != nil {
		return nil, err
	}
	if charts == nil {
		charts = []models.Chart{}
	}
	return charts, nil
}

// GetChart returns one catalogued chart.
func (s *Service) GetChart(_ context.Context, path string) (*models.Chart, error) {
	return s.db.GetChart(path)
}

// IntegrateSidecar embeds a .speeds file placed next to its chart and
// returns the chart path and the key written. See SidecarTarget for the
// naming convention.
func (s *Service) IntegrateSidecar(ctx context.Context, speedsPath string) (string, string, error) {
	chart, d, ok := SidecarTarget(speedsPath)
	if !ok {
		return "", "", fmt.Errorf("chartservice: not a speeds file: %s", speedsPath)
	}
	text, err := s.store.Read(speedsPath)
	if err != nil {
		return "", "", err
	}
	res, err := s.Integrate(ctx, chart, d, string(text))
	if err != nil {
		return "", "", err
	}
	return chart, res.Key, nil
}

// ExportSidecar writes d's speed triggers from the chart at path to the
// sidecar file next to it and returns the sidecar path. The file is named so
// that SidecarTarget maps it back to the same chart and difficulty.
func (s *Service) ExportSidecar(ctx context.Context, path string, d difficulty.Difficulty) (string, error) {
	sidecar, ok := SidecarPath(path, d)
	if !ok {
		return "", fmt.Errorf("%w: not a chart: %s", apperr.ErrInvalidPath, path)
	}
	text, err := s.Extract(ctx, path, d)
	if err != nil {
		return "", err
	}
	if err := s.store.Write(sidecar, []byte(text)); err != nil {
		return "", err
	}
	s.logger.Info("sidecar exported", slog.String("path", sidecar), slog.String("key", d.Key()))
	return sidecar, nil
}

// IndexFile summarises chart data and upserts it into the catalog.
func (s *Service) IndexFile(path string, data []byte) error {
	return index.IndexChart(s.db, path, data, time.Now())
}

func (s *Service) reindex(path string, data []byte) {
	if data == nil {
		return
	}
	if err := s.IndexFile(path, data); err != nil {
		s.logger.Warn("reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// SidecarTarget maps a sidecar speeds file to its chart and difficulty.
// "song.speeds" targets song.srtb under the legacy key; "song.expert.speeds"
// targets song.srtb under the expert key.
func SidecarTarget(speedsPath string) (chart string, d difficulty.Difficulty, ok bool) {
	if !strings.HasSuffix(speedsPath, storage.SpeedsExt) {
		return "", 0, false
	}
	stem := strings.TrimSuffix(speedsPath, storage.SpeedsExt)
	d = difficulty.Legacy
	if ext := path.Ext(stem); ext != "" {
		if named, found := difficulty.FromName(ext[1:]); found {
			d = named
			stem = strings.TrimSuffix(stem, ext)
		}
	}
	if stem == "" || strings.HasSuffix(stem, "/") {
		return "", 0, false
	}
	return stem + storage.ChartExt, d, true
}

// SidecarPath is the inverse of SidecarTarget: the sidecar file that targets
// chart under d. ok is false when no sidecar name maps back to chart, as for
// a legacy sidecar of "song.hard.srtb".
func SidecarPath(chart string, d difficulty.Difficulty) (sidecar string, ok bool) {
	if !strings.HasSuffix(chart, storage.ChartExt) || d.Key() == "" {
		return "", false
	}
	sidecar = strings.TrimSuffix(chart, storage.ChartExt) + storage.SpeedsExt
	if d != difficulty.Legacy {
		sidecar = strings.TrimSuffix(chart, storage.ChartExt) + "." + d.String() + storage.SpeedsExt
	}
	back, got, ok := SidecarTarget(sidecar)
	if !ok || back != chart || got != d {
		return "", false
	}
	return sidecar, true
}

// IsNotFound reports whether err means the chart or its entry is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}
