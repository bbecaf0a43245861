package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"summarist/internal/models"
)

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	books := s.stateFor(user).Books()
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"library":  books.Library,
		"finished": books.FinishedBooks,
	})
}

func (s *Server) handleAddToLibrary(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil || book.ID == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid book payload")
		return
	}

	st := s.stateFor(user)
	st.AddToLibrary(book)
	RespondWithJSON(w, http.StatusOK, st.Books().Library)
}

func (s *Server) handleRemoveFromLibrary(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	st := s.stateFor(user)
	st.RemoveFromLibrary(chi.URLParam(r, "bookID"))
	RespondWithJSON(w, http.StatusOK, st.Books().Library)
}

func (s *Server) handleGetFinished(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	RespondWithJSON(w, http.StatusOK, s.stateFor(user).Books().FinishedBooks)
}

// handleRemoveFromFinished is the unmark-as-read capability. Nothing in the
// observed UI calls it yet, but the state layer supports it.
func (s *Server) handleRemoveFromFinished(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	st := s.stateFor(user)
	st.RemoveFromFinished(chi.URLParam(r, "bookID"))
	RespondWithJSON(w, http.StatusOK, st.Books().FinishedBooks)
}

// handleToggleBookmark flips the book's library membership in one atomic
// step against the latest state.
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
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

	bookmarked := s.stateFor(user).ToggleLibrary(*book)
	RespondWithJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}
