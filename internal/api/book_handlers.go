package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListBooks serves one catalog bucket and mirrors the recommended and
// suggested buckets into the user's state tree, the same way the original
// page install fetched books before rendering.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	status := r.URL.Query().Get("status")
	switch status {
	case "selected", "recommended", "suggested":
	default:
		RespondWithError(w, http.StatusBadRequest, "Unknown status bucket")
		return
	}

	books := s.catalog.Books(status)
	st := s.stateFor(user)
	switch status {
	case "recommended":
		st.SetRecommendedBooks(books)
	case "suggested":
		st.SetSuggestedBooks(books)
	}
	RespondWithJSON(w, http.StatusOK, books)
}

// handleGetSelectedBook serves the book of the day.
func (s *Server) handleGetSelectedBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	book := s.catalog.Selected()
	if book == nil {
		RespondWithError(w, http.StatusNotFound, "No selected book")
		return
	}
	s.stateFor(user).SetSelectedBook(book)
	RespondWithJSON(w, http.StatusOK, book)
}

// handleGetBookContent serves the text the reading view scrolls over. The
// same entitlement guard as opening a session applies: a premium book
// without an active subscription answers with the plan-selection page.
func (s *Server) handleGetBookContent(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	bookID := chi.URLParam(r, "bookID")

	book, err := s.catalog.FindBook(r.Context(), bookID)
	if err != nil {
		RespondWithRedirect(w, http.StatusNotFound, "Book not found", "/for-you")
		return
	}
	if book.SubscriptionRequired && !user.HasActiveSubscription() {
		RespondWithRedirect(w, http.StatusPaymentRequired, "Active subscription required", "/choose-plan")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"id":      book.ID,
		"title":   book.Title,
		"content": book.ReadingText(),
	})
}

// handleGetBook resolves a single book. A lookup that fails even after the
// catalog's bucket fallback is answered with the safe listing page to
// navigate to, not an inline error.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	bookID := chi.URLParam(r, "bookID")

	book, err := s.catalog.FindBook(r.Context(), bookID)
	if err != nil {
		RespondWithRedirect(w, http.StatusNotFound, "Book not found", "/for-you")
		return
	}
	RespondWithJSON(w, http.StatusOK, book)
}
