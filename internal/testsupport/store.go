package testsupport

import (
	"testing"

	"socialstorm/internal/config"
	"socialstorm/internal/usagestore"
)

// MustOpenStore opens a usage store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *usagestore.Store {
	t.Helper()

	store, err := usagestore.Open(cfg.Usage.DBPath)
	if err != nil {
		t.Fatalf("usagestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
