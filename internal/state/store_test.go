package state_test

import (
	"testing"

	"summarist/internal/models"
	"summarist/internal/state"
)

func book(id, title string) models.Book {
	return models.Book{ID: id, Title: title}
}

func TestLibraryMembership(t *testing.T) {
	t.Run("Add Is Idempotent", func(t *testing.T) {
		s := state.New(nil)
		s.AddToLibrary(book("b1", "Atomic Habits"))
		s.AddToLibrary(book("b1", "Atomic Habits"))
		s.AddToLibrary(book("b1", "Atomic Habits"))

		if got := len(s.Books().Library); got != 1 {
			t.Errorf("expected 1 book in library, got %d", got)
		}
		if !s.IsInLibrary("b1") {
			t.Error("expected b1 to be in library")
		}
	})

	t.Run("Remove Missing Id Is NoOp", func(t *testing.T) {
		s := state.New(nil)
		s.AddToLibrary(book("b1", "Atomic Habits"))
		s.RemoveFromLibrary("does-not-exist")

		if got := len(s.Books().Library); got != 1 {
			t.Errorf("expected 1 book in library, got %d", got)
		}
	})

	t.Run("Toggle Is Symmetric", func(t *testing.T) {
		s := state.New(nil)
		b := book("b1", "Deep Work")

		if added := s.ToggleLibrary(b); !added {
			t.Error("first toggle should add")
		}
		if !s.IsInLibrary("b1") {
			t.Error("expected b1 in library after first toggle")
		}
		if added := s.ToggleLibrary(b); added {
			t.Error("second toggle should remove")
		}
		if s.IsInLibrary("b1") {
			t.Error("expected b1 gone after second toggle")
		}
		if got := len(s.Books().Library); got != 0 {
			t.Errorf("expected empty library, got %d books", got)
		}
	})

	t.Run("Remove Preserves Order", func(t *testing.T) {
		s := state.New(nil)
		s.AddToLibrary(book("a", "A"))
		s.AddToLibrary(book("b", "B"))
		s.AddToLibrary(book("c", "C"))
		s.RemoveFromLibrary("b")

		lib := s.Books().Library
		if len(lib) != 2 || lib[0].ID != "a" || lib[1].ID != "c" {
			t.Errorf("unexpected library after removal: %+v", lib)
		}
	})
}

func TestFinishedMembership(t *testing.T) {
	t.Run("Add Is Idempotent", func(t *testing.T) {
		s := state.New(nil)
		b := book("b1", "Atomic Habits")
		s.AddToFinished(b)
		s.AddToFinished(b)

		if got := len(s.Books().FinishedBooks); got != 1 {
			t.Errorf("expected 1 finished book, got %d", got)
		}
		if !s.IsFinished("b1") {
			t.Error("expected b1 to be finished")
		}
	})

	t.Run("Remove Clears Membership", func(t *testing.T) {
		s := state.New(nil)
		s.AddToFinished(book("b1", "Atomic Habits"))
		s.RemoveFromFinished("b1")

		if s.IsFinished("b1") {
			t.Error("expected b1 no longer finished")
		}
	})
}

func TestAuthState(t *testing.T) {
	t.Run("SetUser Derives Authenticated And Clears Error", func(t *testing.T) {
		s := state.New(nil)
		s.SetError("Invalid credentials")

		s.SetUser(&models.User{UID: "u1", Email: "a@b.c"})

		auth := s.Auth()
		if !auth.IsAuthenticated {
			t.Error("expected authenticated after SetUser")
		}
		if auth.Error != "" {
			t.Errorf("expected error cleared, got %q", auth.Error)
		}
	})

	t.Run("SetUser Nil Means Signed Out", func(t *testing.T) {
		s := state.New(nil)
		s.SetUser(&models.User{UID: "u1"})
		s.SetUser(nil)

		if s.IsAuthenticated() {
			t.Error("expected unauthenticated for nil user")
		}
	})

	t.Run("Logout Clears Identity", func(t *testing.T) {
		s := state.New(nil)
		s.SetUser(&models.User{UID: "u1"})
		s.Logout()

		auth := s.Auth()
		if auth.User != nil || auth.IsAuthenticated {
			t.Errorf("expected cleared auth state, got %+v", auth)
		}
	})

	t.Run("SetError Stops Loading", func(t *testing.T) {
		s := state.New(nil)
		s.SetLoading(true)
		s.SetError("boom")

		auth := s.Auth()
		if auth.IsLoading {
			t.Error("expected loading false after error")
		}
		if auth.Error != "boom" {
			t.Errorf("expected error recorded, got %q", auth.Error)
		}
	})
}

func TestHydratedFlagIsOneWay(t *testing.T) {
	s := state.New(nil)
	if s.HasHydrated() {
		t.Fatal("new store should not be hydrated")
	}
	s.SetHydrated(true)
	s.SetHydrated(false)
	if !s.HasHydrated() {
		t.Error("hydrated flag must never flip back to false")
	}
}

func TestFindBookAcrossBuckets(t *testing.T) {
	s := state.New(nil)
	sel := book("sel", "Selected")
	s.SetSelectedBook(&sel)
	s.SetRecommendedBooks([]models.Book{book("rec", "Recommended")})
	s.SetSuggestedBooks([]models.Book{book("sug", "Suggested")})
	s.AddToLibrary(book("lib", "Saved"))
	s.AddToFinished(book("fin", "Done"))

	for _, id := range []string{"sel", "rec", "sug", "lib", "fin"} {
		if _, ok := s.FindBook(id); !ok {
			t.Errorf("expected to find %q", id)
		}
	}
	if _, ok := s.FindBook("nope"); ok {
		t.Error("found a book that exists in no bucket")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := state.New(nil)
	s.AddToLibrary(book("b1", "Original"))

	snap := s.Books()
	snap.Library[0].Title = "Mutated"

	if got := s.Books().Library[0].Title; got != "Original" {
		t.Errorf("snapshot mutation leaked into store: %q", got)
	}
}
