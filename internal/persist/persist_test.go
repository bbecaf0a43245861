package persist_test

import (
	"testing"

	"summarist/internal/persist"
	"summarist/internal/testutil"
)

func TestSQLiteAdapter(t *testing.T) {
	database := testutil.SetupTestDB(t)
	adapter := persist.New(database)

	t.Run("Save And Load Round Trip", func(t *testing.T) {
		adapter.Save("k1", map[string]string{"hello": "world"})
		raw := adapter.Load("k1")
		if string(raw) != `{"hello":"world"}` {
			t.Errorf("unexpected stored value: %s", raw)
		}
	})

	t.Run("Missing Key Loads As Nil", func(t *testing.T) {
		if raw := adapter.Load("never-written"); raw != nil {
			t.Errorf("expected nil for missing key, got %s", raw)
		}
	})

	t.Run("Save Replaces Previous Value", func(t *testing.T) {
		adapter.Save("k2", []string{"a"})
		adapter.Save("k2", []string{"a", "b"})
		if got := string(adapter.Load("k2")); got != `["a","b"]` {
			t.Errorf("expected latest value, got %s", got)
		}
	})

	t.Run("Malformed Record Loads As Nil", func(t *testing.T) {
		_, err := database.Exec(
			"INSERT INTO app_state (key, value) VALUES (?, ?)", "corrupt", "{not json",
		)
		if err != nil {
			t.Fatalf("failed to plant corrupt record: %v", err)
		}
		if raw := adapter.Load("corrupt"); raw != nil {
			t.Errorf("expected nil for malformed record, got %s", raw)
		}
	})

	t.Run("Remove Deletes The Record", func(t *testing.T) {
		adapter.Save("k3", 1)
		adapter.Remove("k3")
		if raw := adapter.Load("k3"); raw != nil {
			t.Errorf("expected nil after remove, got %s", raw)
		}
		// Removing a missing key is fine.
		adapter.Remove("k3")
	})
}

func TestNamespacedAdapter(t *testing.T) {
	database := testutil.SetupTestDB(t)
	base := persist.New(database)

	alice := persist.ForUser(base, "alice")
	bob := persist.ForUser(base, "bob")

	alice.Save(persist.KeyBooksLibrary, []string{"b1"})

	if raw := bob.Load(persist.KeyBooksLibrary); raw != nil {
		t.Errorf("bob should not see alice's record, got %s", raw)
	}
	if raw := alice.Load(persist.KeyBooksLibrary); string(raw) != `["b1"]` {
		t.Errorf("alice should read back her own record, got %s", raw)
	}

	// The underlying row carries the uid prefix.
	if raw := base.Load("user:alice:" + persist.KeyBooksLibrary); string(raw) != `["b1"]` {
		t.Errorf("expected prefixed key in base storage, got %s", raw)
	}

	alice.Remove(persist.KeyBooksLibrary)
	if raw := alice.Load(persist.KeyBooksLibrary); raw != nil {
		t.Errorf("expected nil after namespaced remove, got %s", raw)
	}
}
