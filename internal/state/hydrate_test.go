package state_test

import (
	"encoding/json"
	"testing"

	"summarist/internal/models"
	"summarist/internal/persist"
	"summarist/internal/state"
)

// memAdapter is an in-memory persist.Adapter for exercising hydration
// without a database.
type memAdapter struct {
	records map[string]json.RawMessage
}

func newMemAdapter() *memAdapter {
	return &memAdapter{records: make(map[string]json.RawMessage)}
}

func (m *memAdapter) Load(key string) json.RawMessage {
	return m.records[key]
}

func (m *memAdapter) Save(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.records[key] = data
}

func (m *memAdapter) Remove(key string) {
	delete(m.records, key)
}

func TestHydrate(t *testing.T) {
	t.Run("Restores Persisted State", func(t *testing.T) {
		adapter := newMemAdapter()

		// A previous process wrote through these values.
		first := state.New(adapter)
		first.SetUser(&models.User{UID: "u1", Email: "a@b.c", DisplayName: "A"})
		first.AddToLibrary(book("b1", "Atomic Habits"))
		first.AddToLibrary(book("b2", "Deep Work"))
		first.AddToFinished(book("b1", "Atomic Habits"))

		second := state.New(adapter)
		second.Hydrate()

		auth := second.Auth()
		if auth.User == nil || auth.User.UID != "u1" {
			t.Fatalf("expected restored user u1, got %+v", auth.User)
		}
		if !auth.IsAuthenticated {
			t.Error("restored user should read as authenticated")
		}
		books := second.Books()
		if len(books.Library) != 2 || books.Library[0].ID != "b1" || books.Library[1].ID != "b2" {
			t.Errorf("unexpected restored library: %+v", books.Library)
		}
		if !second.IsFinished("b1") {
			t.Error("expected b1 restored as finished")
		}
	})

	t.Run("Always Flips Hydrated Flag", func(t *testing.T) {
		s := state.New(newMemAdapter())
		s.Hydrate()
		if !s.HasHydrated() {
			t.Error("expected hydrated after empty storage load")
		}

		noAdapter := state.New(nil)
		noAdapter.Hydrate()
		if !noAdapter.HasHydrated() {
			t.Error("expected hydrated even without an adapter")
		}
	})

	t.Run("Malformed User Reads As Signed Out", func(t *testing.T) {
		adapter := newMemAdapter()
		adapter.records[persist.KeyAuthUser] = json.RawMessage(`{"email": 42}`)

		s := state.New(adapter)
		s.Hydrate()

		if s.IsAuthenticated() {
			t.Error("malformed user record must not authenticate")
		}
		if !s.HasHydrated() {
			t.Error("hydration must complete despite the bad record")
		}
	})

	t.Run("User Without Uid Is Rejected", func(t *testing.T) {
		adapter := newMemAdapter()
		adapter.records[persist.KeyAuthUser] = json.RawMessage(`{"email": "a@b.c"}`)

		s := state.New(adapter)
		s.Hydrate()

		if s.IsAuthenticated() {
			t.Error("a user record without a uid must not authenticate")
		}
	})

	t.Run("Malformed Book List Is Ignored", func(t *testing.T) {
		adapter := newMemAdapter()
		adapter.records[persist.KeyBooksLibrary] = json.RawMessage(`"not a list"`)
		adapter.records[persist.KeyBooksFinished] = json.RawMessage(`[{"id":"ok"}]`)

		s := state.New(adapter)
		s.Hydrate()

		if got := len(s.Books().Library); got != 0 {
			t.Errorf("malformed library should hydrate empty, got %d books", got)
		}
		if !s.IsFinished("ok") {
			t.Error("the valid finished list should still hydrate")
		}
	})

	t.Run("Logout Removes Persisted User", func(t *testing.T) {
		adapter := newMemAdapter()
		s := state.New(adapter)
		s.SetUser(&models.User{UID: "u1"})
		s.Logout()

		if _, ok := adapter.records[persist.KeyAuthUser]; ok {
			t.Error("logout should remove the persisted user record")
		}
	})

	t.Run("Empty Sets Persist As Empty Lists", func(t *testing.T) {
		adapter := newMemAdapter()
		s := state.New(adapter)
		s.AddToLibrary(book("b1", "X"))
		s.RemoveFromLibrary("b1")

		raw, ok := adapter.records[persist.KeyBooksLibrary]
		if !ok {
			t.Fatal("expected a persisted library record")
		}
		if string(raw) != "[]" {
			t.Errorf("expected empty list persisted as [], got %s", raw)
		}
	})
}

func TestManagerScopesStoresPerUser(t *testing.T) {
	adapter := newMemAdapter()
	mgr := state.NewManager(adapter)

	alice := mgr.For("alice")
	alice.AddToLibrary(book("b1", "Atomic Habits"))

	bob := mgr.For("bob")
	if bob.IsInLibrary("b1") {
		t.Error("one user's library must not leak into another's")
	}

	if mgr.For("alice") != alice {
		t.Error("expected the same store instance on repeat lookup")
	}

	// A fresh manager over the same storage sees alice's data again.
	mgr2 := state.NewManager(adapter)
	if !mgr2.For("alice").IsInLibrary("b1") {
		t.Error("expected alice's library to survive a manager restart")
	}
}
