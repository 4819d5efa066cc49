package kvsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"animeapi/internal/anime"
	"animeapi/internal/changes"
	"animeapi/internal/kvsync"
)

type fakeStore struct {
	pending   []changes.Entry
	records   map[int64]*anime.Record
	processed []int64
}

func (f *fakeStore) PendingChanges(context.Context, int) ([]changes.Entry, error) {
	return f.pending, nil
}

func (f *fakeStore) RecordsByID(_ context.Context, ids []int64) (map[int64]*anime.Record, error) {
	out := map[int64]*anime.Record{}
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, ids []int64) error {
	f.processed = append(f.processed, ids...)
	return nil
}

type fakeClient struct {
	data    map[string]string
	batches int
	failAt  int
}

func (f *fakeClient) Apply(_ context.Context, ops []kvsync.Op) error {
	f.batches++
	if f.failAt > 0 && f.batches == f.failAt {
		return errors.New("connection reset")
	}
	for _, op := range ops {
		if op.Delete {
			delete(f.data, op.Key)
			continue
		}
		f.data[op.Key] = op.Value
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestSyncWritesKeysAndMarksProcessed(t *testing.T) {
	store := &fakeStore{
		pending: []changes.Entry{
			{ID: 1, AnimeID: 10, Type: changes.Insert},
			{ID: 2, AnimeID: 11, Type: changes.Update},
			{ID: 3, AnimeID: 9, Type: changes.Delete},
		},
		records: map[int64]*anime.Record{
			10: {Title: "Ten", MyAnimeList: anime.Int(100)},
			11: {Title: "Eleven", AniList: anime.Int(200)},
		},
	}
	client := &fakeClient{data: map[string]string{"api:9": "{}"}}
	syncer := &kvsync.Syncer{Store: store, Client: client, BatchSize: 2, KeyPrefix: "api:"}

	result, err := syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Changes != 3 || result.Operations != 5 || result.Batches != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := client.data["api:9"]; ok {
		t.Fatal("expected deleted record key removed")
	}
	if client.data["api:myanimelist/100"] != "10" || client.data["api:anilist/200"] != "11" {
		t.Fatalf("unexpected platform keys %v", client.data)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(client.data["api:10"]), &decoded); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if decoded["title"] != "Ten" || decoded["myanimelist"] != float64(100) {
		t.Fatalf("unexpected record payload %v", decoded)
	}
	if _, present := decoded["anilist"]; present {
		t.Fatal("absent fields must be omitted")
	}
	if len(store.processed) != 3 {
		t.Fatalf("expected 3 processed rows, got %v", store.processed)
	}
}

func TestSyncFailureLeavesChangesPending(t *testing.T) {
	store := &fakeStore{
		pending: []changes.Entry{{ID: 1, AnimeID: 10, Type: changes.Insert}},
		records: map[int64]*anime.Record{10: {Title: "Ten", MyAnimeList: anime.Int(100)}},
	}
	client := &fakeClient{data: map[string]string{}, failAt: 1}
	_, err := (&kvsync.Syncer{Store: store, Client: client}).Run(context.Background())
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if len(store.processed) != 0 {
		t.Fatalf("expected nothing marked processed, got %v", store.processed)
	}
}

func TestSyncNothingPending(t *testing.T) {
	client := &fakeClient{data: map[string]string{}}
	result, err := (&kvsync.Syncer{Store: &fakeStore{}, Client: client}).Run(context.Background())
	if err != nil || result.Changes != 0 || client.batches != 0 {
		t.Fatalf("unexpected sync of empty log: %+v %v", result, err)
	}
}
