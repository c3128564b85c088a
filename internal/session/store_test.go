package session

import (
	"path/filepath"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get(); ok {
		t.Fatal("expected empty store before any save")
	}

	sess := Session{Token: "tok-1", UserID: "42", Username: "eco"}
	if err := store.Save(sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := store.Get()
	if !ok {
		t.Fatal("expected session after save")
	}
	if got != sess {
		t.Fatalf("stored session mismatch: %+v", got)
	}

	// A second save replaces wholesale.
	replacement := Session{Token: "tok-2", UserID: "42", Username: "eco"}
	if err := store.Save(replacement); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, _ = store.Get()
	if got.Token != "tok-2" {
		t.Fatalf("expected replacement token, got %q", got.Token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("expected empty store after clear")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.Get(); ok {
		t.Fatal("expected empty store before any save")
	}

	sess := Session{Token: "tok", UserID: "7", Username: "eco"}
	if err := store.Save(sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(Session{Token: "tok-2", UserID: "7", Username: "eco"}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, ok := store.Get()
	if !ok {
		t.Fatal("expected session after save")
	}
	if got.Token != "tok-2" || got.UserID != "7" || got.Username != "eco" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("expected empty store after clear")
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := store.Save(Session{Token: "tok", UserID: "9", Username: "eco"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get()
	if !ok {
		t.Fatal("expected session to survive reopen")
	}
	if got.UserID != "9" {
		t.Fatalf("unexpected user id: %q", got.UserID)
	}
}

func TestSQLiteStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	if err := store.Save(Session{Token: "tok", UserID: "1", Username: "eco"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}
