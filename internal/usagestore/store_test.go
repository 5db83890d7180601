package usagestore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "selections.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListForJob(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	selections := []Selection{
		{JobID: "job-1", SceneIndex: 1, Subject: "eiffel tower", Locator: "https://cdn.example/eiffel_tower.mp4", Provider: "pexels-video", IsVideo: true, Score: 125},
		{JobID: "job-1", SceneIndex: 0, Subject: "paris skyline", Locator: "landmarks/paris_skyline.mp4", Provider: "library", IsVideo: true, Score: 90},
		{JobID: "job-2", SceneIndex: 0, Subject: "great wall", Locator: "https://cdn.example/great_wall.jpg", Provider: "pixabay-photo", Score: 45},
	}
	for _, sel := range selections {
		if _, err := store.Record(ctx, sel); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.ListForJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("ListForJob() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListForJob() returned %d selections, want 2", len(got))
	}
	if got[0].SceneIndex != 0 || got[1].SceneIndex != 1 {
		t.Errorf("selections not in scene order: %+v", got)
	}
	if got[1].Stem != "eiffel_tower" {
		t.Errorf("Stem = %q, want derived from the locator", got[1].Stem)
	}
	if !got[1].IsVideo {
		t.Error("IsVideo flag lost on round trip")
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not recorded")
	}
}

func TestRecentStemsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, locator := range []string{"a_first.mp4", "b_second.mp4", "c_third.mp4"} {
		if _, err := store.Record(ctx, Selection{JobID: "job", Locator: locator}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	stems, err := store.RecentStems(ctx, 2)
	if err != nil {
		t.Fatalf("RecentStems() error = %v", err)
	}
	if len(stems) != 2 || stems[0] != "c_third" || stems[1] != "b_second" {
		t.Fatalf("RecentStems() = %v, want newest two first", stems)
	}
}

func TestRecordRequiresLocator(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Record(context.Background(), Selection{JobID: "job"}); err == nil {
		t.Fatal("Record() error = nil, want locator requirement")
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selections.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Record(context.Background(), Selection{JobID: "job", Locator: "kept.mp4"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	selections, err := reopened.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(selections) != 1 || selections[0].Stem != "kept" {
		t.Fatalf("ListRecent() = %+v, want the persisted selection", selections)
	}
}
