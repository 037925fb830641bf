package index

import (
	"log/slog"
	"time"

	"github.com/starford/srtbspeeds/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed charts are parsed and upserted
//   - charts removed from disk are deleted from the index
func Sync(db ChartIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexChart(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteChart(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexChart summarises chart data and upserts it into the index.
func IndexChart(db ChartIndex, path string, data []byte, updatedAt time.Time) error {
	speeds, err := Summarize(data)
	if err != nil {
		return err
	}
	return db.UpsertChart(ChartRow{
		Path:      path,
		Checksum:  storage.Checksum(data),
		UpdatedAt: updatedAt,
	}, speeds)
}
