// The in-memory state store. It is the single source of truth for the
// signed-in user and the per-user book sets, mutated only through the named
// operations below. Every mutation re-establishes its invariants before
// releasing the lock, and the write-through persistence hook fires inside
// the same critical section so durable writes land in mutation order.

package state

import (
	"sync"

	"summarist/internal/models"
	"summarist/internal/persist"
)

// AuthSnapshot is a point-in-time copy of the auth sub-tree.
type AuthSnapshot struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	HasHydrated     bool
}

// BooksSnapshot is a point-in-time copy of the books sub-tree.
type BooksSnapshot struct {
	SelectedBook     *models.Book
	RecommendedBooks []models.Book
	SuggestedBooks   []models.Book
	Library          []models.Book
	FinishedBooks    []models.Book
	SearchQuery      string
}

// Store holds the full state tree. All access goes through its methods; the
// mutex gives the single-writer discipline the rest of the code relies on.
type Store struct {
	mu      sync.Mutex
	adapter persist.Adapter

	user            *models.User
	isAuthenticated bool
	isLoading       bool
	errMsg          string
	hasHydrated     bool

	selectedBook     *models.Book
	recommendedBooks []models.Book
	suggestedBooks   []models.Book
	library          []models.Book
	finishedBooks    []models.Book
	searchQuery      string
}

// New creates a store that writes through to the given adapter. A nil
// adapter disables persistence, which is convenient in tests.
func New(adapter persist.Adapter) *Store {
	return &Store{adapter: adapter}
}

// SetUser installs the identity record, derives isAuthenticated from its
// presence and clears any previous auth error.
func (s *Store) SetUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.isAuthenticated = u != nil
	s.errMsg = ""
	s.persistUser()
}

// Logout clears the identity record.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.isAuthenticated = false
	s.errMsg = ""
	s.persistUser()
}

// SetLoading flips the auth loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = loading
}

// SetError records an auth error and stops any in-flight loading indicator.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
	s.isLoading = false
}

// ClearError drops any recorded auth error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// SetHydrated marks the initial load-from-storage attempt as complete. The
// flag is a one-way flip: once true it stays true for the process lifetime.
func (s *Store) SetHydrated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v {
		s.hasHydrated = true
	}
}

// AddToLibrary inserts a book into the library set. Inserting an id that is
// already present is a no-op.
func (s *Store) AddToLibrary(book models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexByID(s.library, book.ID) >= 0 {
		return
	}
	s.library = append(s.library, book)
	s.persistLibrary()
}

// RemoveFromLibrary removes the book with the given id, if present.
func (s *Store) RemoveFromLibrary(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.library, id)
	if i < 0 {
		return
	}
	s.library = append(s.library[:i], s.library[i+1:]...)
	s.persistLibrary()
}

// ToggleLibrary flips the book's library membership using the state at the
// moment of the call, and reports whether the book is bookmarked afterwards.
// It exists so the bookmark action is a single read-modify-write under the
// lock rather than a check against a possibly stale snapshot.
func (s *Store) ToggleLibrary(book models.Book) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.library, book.ID); i >= 0 {
		s.library = append(s.library[:i], s.library[i+1:]...)
		s.persistLibrary()
		return false
	}
	s.library = append(s.library, book)
	s.persistLibrary()
	return true
}

// AddToFinished inserts a book into the finished set. Idempotent, like
// AddToLibrary; completion detection depends on that.
func (s *Store) AddToFinished(book models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexByID(s.finishedBooks, book.ID) >= 0 {
		return
	}
	s.finishedBooks = append(s.finishedBooks, book)
	s.persistFinished()
}

// RemoveFromFinished removes the book with the given id from the finished
// set. No user-facing control triggers this today, but the capability is
// part of the state layer's contract.
func (s *Store) RemoveFromFinished(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.finishedBooks, id)
	if i < 0 {
		return
	}
	s.finishedBooks = append(s.finishedBooks[:i], s.finishedBooks[i+1:]...)
	s.persistFinished()
}

// SetLibrary replaces the library set verbatim. Used by hydration; there is
// no merge with server data, whatever was last persisted locally wins.
func (s *Store) SetLibrary(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.library = append([]models.Book(nil), books...)
	s.persistLibrary()
}

// SetFinishedBooks replaces the finished set verbatim.
func (s *Store) SetFinishedBooks(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedBooks = append([]models.Book(nil), books...)
	s.persistFinished()
}

// SetSelectedBook records the book-of-the-day.
func (s *Store) SetSelectedBook(book *models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedBook = book
}

// SetRecommendedBooks replaces the recommended bucket.
func (s *Store) SetRecommendedBooks(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendedBooks = append([]models.Book(nil), books...)
}

// SetSuggestedBooks replaces the suggested bucket.
func (s *Store) SetSuggestedBooks(books []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestedBooks = append([]models.Book(nil), books...)
}

// SetSearchQuery records the active search query.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
}

// Auth returns a copy of the auth sub-tree.
func (s *Store) Auth() AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var u *models.User
	if s.user != nil {
		copied := *s.user
		u = &copied
	}
	return AuthSnapshot{
		User:            u,
		IsAuthenticated: s.isAuthenticated,
		IsLoading:       s.isLoading,
		Error:           s.errMsg,
		HasHydrated:     s.hasHydrated,
	}
}

// Books returns a copy of the books sub-tree.
func (s *Store) Books() BooksSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sel *models.Book
	if s.selectedBook != nil {
		copied := *s.selectedBook
		sel = &copied
	}
	return BooksSnapshot{
		SelectedBook:     sel,
		RecommendedBooks: append([]models.Book(nil), s.recommendedBooks...),
		SuggestedBooks:   append([]models.Book(nil), s.suggestedBooks...),
		Library:          append([]models.Book(nil), s.library...),
		FinishedBooks:    append([]models.Book(nil), s.finishedBooks...),
		SearchQuery:      s.searchQuery,
	}
}

// IsAuthenticated reports whether a user is currently set.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticated
}

// HasHydrated reports whether the initial storage load has completed.
func (s *Store) HasHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasHydrated
}

// IsInLibrary reports membership of the id in the library set.
func (s *Store) IsInLibrary(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexByID(s.library, id) >= 0
}

// IsFinished reports membership of the id in the finished set.
func (s *Store) IsFinished(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexByID(s.finishedBooks, id) >= 0
}

// FindBook looks the id up across every bucket the store knows about:
// selected, recommended, suggested, library and finished. Used as the local
// half of the catalog fallback.
func (s *Store) FindBook(id string) (models.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedBook != nil && s.selectedBook.ID == id {
		return *s.selectedBook, true
	}
	for _, bucket := range [][]models.Book{s.recommendedBooks, s.suggestedBooks, s.library, s.finishedBooks} {
		if i := indexByID(bucket, id); i >= 0 {
			return bucket[i], true
		}
	}
	return models.Book{}, false
}

// persistUser mirrors the user record to durable storage. A nil user removes
// the record, matching the load side where absence means signed out.
func (s *Store) persistUser() {
	if s.adapter == nil {
		return
	}
	if s.user == nil {
		s.adapter.Remove(persist.KeyAuthUser)
		return
	}
	s.adapter.Save(persist.KeyAuthUser, s.user)
}

func (s *Store) persistLibrary() {
	if s.adapter == nil {
		return
	}
	s.adapter.Save(persist.KeyBooksLibrary, nonNil(s.library))
}

func (s *Store) persistFinished() {
	if s.adapter == nil {
		return
	}
	s.adapter.Save(persist.KeyBooksFinished, nonNil(s.finishedBooks))
}

func indexByID(books []models.Book, id string) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

// nonNil keeps an empty set persisted as [] rather than null.
func nonNil(books []models.Book) []models.Book {
	if books == nil {
		return []models.Book{}
	}
	return books
}
