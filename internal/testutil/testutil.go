// Package testutil provides shared test helpers for setting up chart
// libraries and catalog databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/srtbspeeds/internal/index"
	"github.com/starford/srtbspeeds/internal/storage"
)

// Chart is a minimal chart bundle with one unrelated large string entry.
const Chart = `{"unityObjectValuesContainer":{"values":[{"key":"SO_TrackInfo_TrackInfo","jsonKey":"SO_TrackInfo_TrackInfo","fullType":"TrackInfo"}]},` +
	`"largeStringValuesContainer":{"values":[{"key":"SO_TrackInfo_TrackInfo","val":"{\"title\":\"Test\"}"}]}}`

// Speeds is a small speeds file and SpeedsNormalized its canonical encoding.
const (
	Speeds           = "# intro\n0 1\n1.5 2 false\n2 1.5 true\n"
	SpeedsNormalized = "0 1 false\n1.5 2 false\n2 1.5 true\n"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "srtbspeeds-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary chart library holding the given files.
func TestLibrary(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for p, content := range files {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return store.Root(), store
}
