package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/models"
	"github.com/starford/srtbspeeds/internal/storage"
)

const chartWithSpeeds = `{"unityObjectValuesContainer":{"values":[]},"largeStringValuesContainer":{"values":[` +
	`{"key":"SO_TrackInfo_TrackInfo","val":"{}"},` +
	`{"key":"SpeedHelper_SpeedTriggers_EASY","val":"{\"Triggers\":[{\"Time\":0,\"SpeedMultiplier\":1,\"InterpolateToNextTrigger\":false},{\"Time\":12.5,\"SpeedMultiplier\":2,\"InterpolateToNextTrigger\":true}]}"},` +
	`{"key":"SpeedHelper_SpeedTriggers","val":"broken"}]}}`

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "srtbspeeds-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM charts`).Scan(&count); err != nil {
		t.Fatalf("charts table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM chart_speeds`).Scan(&count); err != nil {
		t.Fatalf("chart_speeds table missing: %v", err)
	}
}

func TestUpsertAndGetChart(t *testing.T) {
	db := testDB(t)
	speeds := []models.ChartSpeeds{
		{Key: "SpeedHelper_SpeedTriggers_HARD", TriggerCount: 3, FirstTime: 1, LastTime: 9.5},
		{Key: "SpeedHelper_SpeedTriggers_EASY", TriggerCount: 1},
	}
	if err := db.UpsertChart(ChartRow{Path: "a.srtb", Checksum: "abc", UpdatedAt: time.Now()}, speeds); err != nil {
		t.Fatalf("UpsertChart: %v", err)
	}
	cs, err := db.GetChecksum("a.srtb")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc" {
		t.Errorf("checksum = %q, want %q", cs, "abc")
	}

	c, err := db.GetChart("a.srtb")
	if err != nil {
		t.Fatalf("GetChart: %v", err)
	}
	if len(c.Speeds) != 2 {
		t.Fatalf("speeds = %+v", c.Speeds)
	}
	// Document order is kept.
	if c.Speeds[0].Difficulty != "hard" || c.Speeds[0].TriggerCount != 3 || c.Speeds[0].LastTime != 9.5 {
		t.Errorf("speeds[0] = %+v", c.Speeds[0])
	}

	// Re-upsert replaces speed rows.
	if err := db.UpsertChart(ChartRow{Path: "a.srtb", Checksum: "def"}, nil); err != nil {
		t.Fatalf("UpsertChart: %v", err)
	}
	c, _ = db.GetChart("a.srtb")
	if len(c.Speeds) != 0 || c.Checksum != "def" {
		t.Errorf("chart after re-upsert = %+v", c)
	}
}

func TestGetChart_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetChart("nope.srtb"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	cs, err := db.GetChecksum("nope.srtb")
	if err != nil || cs != "" {
		t.Errorf("GetChecksum = %q, %v", cs, err)
	}
}

func TestDeleteChart(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertChart(ChartRow{Path: "del.srtb", Checksum: "x"}, []models.ChartSpeeds{{Key: "k"}})

	if err := db.DeleteChart("del.srtb"); err != nil {
		t.Fatalf("DeleteChart: %v", err)
	}
	charts, err := db.ListCharts()
	if err != nil {
		t.Fatalf("ListCharts: %v", err)
	}
	if len(charts) != 0 {
		t.Errorf("charts = %+v, want none", charts)
	}
}

func TestSummarize(t *testing.T) {
	got, err := Summarize([]byte(chartWithSpeeds))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	easy := got[0]
	if easy.Difficulty != "easy" || easy.TriggerCount != 2 || easy.FirstTime != 0 || easy.LastTime != 12.5 {
		t.Errorf("easy = %+v", easy)
	}
	legacy := got[1]
	if legacy.Difficulty != "legacy" || legacy.TriggerCount != -1 {
		t.Errorf("legacy = %+v", legacy)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("one.srtb", []byte(chartWithSpeeds))
	_ = store.Write("sub/bad.srtb", []byte("not json"))
	_ = db.UpsertChart(ChartRow{Path: "gone.srtb", Checksum: "old"}, nil)

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	charts, err := db.ListCharts()
	if err != nil {
		t.Fatalf("ListCharts: %v", err)
	}
	if len(charts) != 1 || charts[0].Path != "one.srtb" {
		t.Fatalf("charts = %+v", charts)
	}
	if len(charts[0].Speeds) != 2 {
		t.Errorf("speeds = %+v", charts[0].Speeds)
	}
	if charts[0].Checksum != storage.Checksum([]byte(chartWithSpeeds)) {
		t.Errorf("checksum = %q", charts[0].Checksum)
	}
}
