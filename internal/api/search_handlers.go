package api

import (
	"net/http"
	"strconv"

	"summarist/internal/models"
	"summarist/internal/search"
	"summarist/internal/state"
)

// The search corpus is the user's current recommended+suggested buckets, in
// that order, matching how the pages assembled their source list. Buckets
// that have not been fetched yet are filled from the catalog cache first.
func (s *Server) searchCorpus(st *state.Store) []models.Book {
	books := st.Books()
	if len(books.RecommendedBooks) == 0 {
		st.SetRecommendedBooks(s.catalog.Books("recommended"))
	}
	if len(books.SuggestedBooks) == 0 {
		st.SetSuggestedBooks(s.catalog.Books("suggested"))
	}
	books = st.Books()
	return append(books.RecommendedBooks, books.SuggestedBooks...)
}

func (s *Server) handleSearchWithLimit(w http.ResponseWriter, r *http.Request, limit int) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	query := r.URL.Query().Get("q")
	// Clients may ask for fewer rows than the endpoint's cap, never more.
	if override := r.URL.Query().Get("limit"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	st := s.stateFor(user)
	st.SetSearchQuery(query)
	results := search.Rank(query, s.searchCorpus(st), limit)
	RespondWithJSON(w, http.StatusOK, results)
}

// handleSearch is the full search-results page endpoint.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSearchWithLimit(w, r, s.app.Config().Search.ResultLimit)
}

// handleSearchSuggestions backs the inline quick-suggestions dropdown, which
// shows a couple more rows than the results page.
func (s *Server) handleSearchSuggestions(w http.ResponseWriter, r *http.Request) {
	s.handleSearchWithLimit(w, r, s.app.Config().Search.SuggestionLimit)
}
