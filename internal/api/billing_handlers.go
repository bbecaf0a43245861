package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"summarist/internal/billing"
)

// handleCreateCheckoutSession asks the billing provider for a checkout
// session and returns its redirect URL. Guests must register first; a
// subscription needs a real account to attach to.
func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req billing.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.CustomerEmail == "" {
		req.CustomerEmail = user.Email
	}

	session, err := s.billing.CreateCheckoutSession(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, billing.ErrNotConfigured) || errors.Is(err, billing.ErrMissingPrice) {
			status = http.StatusInternalServerError
		}
		RespondWithError(w, status, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, session)
}

func (s *Server) handleCreatePortalSession(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := s.billing.CreatePortalSession(r.Context(), user.Email)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, billing.ErrNotConfigured) {
			status = http.StatusInternalServerError
		}
		RespondWithError(w, status, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, session)
}
