package testsupport

import (
	"context"
	"testing"

	"animeapi/internal/anime"
	"animeapi/internal/changes"
	"animeapi/internal/config"
	"animeapi/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedRecords finalizes records and inserts them as one changeset.
func SeedRecords(t testing.TB, st *store.Store, records ...*anime.Record) {
	t.Helper()

	for _, record := range records {
		record.Finalize()
	}
	if err := st.ApplyChanges(context.Background(), changes.Changeset{Inserts: records}, "seed"); err != nil {
		t.Fatalf("seed records: %v", err)
	}
}
