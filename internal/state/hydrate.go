package state

import (
	"encoding/json"
	"log"

	"summarist/internal/models"
	"summarist/internal/persist"
)

// Hydrate loads previously persisted state into the store. It runs once, at
// the start of a store's lifetime, and always flips hasHydrated regardless
// of how much of the load succeeded: rendering decisions must be able to
// tell "not yet hydrated" apart from "hydrated and signed out".
func (s *Store) Hydrate() {
	defer s.SetHydrated(true)

	if s.adapter == nil {
		return
	}

	if raw := s.adapter.Load(persist.KeyAuthUser); raw != nil {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil || u.UID == "" {
			log.Printf("state: ignoring malformed persisted user")
		} else {
			s.SetUser(&u)
		}
	}

	s.hydrateBooks(persist.KeyBooksLibrary, s.installLibrary)
	s.hydrateBooks(persist.KeyBooksFinished, s.installFinished)
}

func (s *Store) hydrateBooks(key string, install func([]models.Book)) {
	raw := s.adapter.Load(key)
	if raw == nil {
		return
	}
	var books []models.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		// Anything that is not a list of books reads as absent.
		log.Printf("state: ignoring malformed persisted record for %q", key)
		return
	}
	install(books)
}

// The install helpers bypass the write-through hook: hydration re-persisting
// the value it just read is harmless but pointless.
func (s *Store) installLibrary(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.library = books
}

func (s *Store) installFinished(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedBooks = books
}
