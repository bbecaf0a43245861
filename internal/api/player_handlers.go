package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"summarist/internal/player"
)

// handleOpenSession starts a media session for a book. The entitlement check
// runs before anything loads: a premium book without an active subscription
// answers with the plan-selection page instead of a session.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var payload struct {
		BookID string `json:"book_id"`
		Mode   string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	mode := player.Mode(payload.Mode)
	if mode != player.ModeListening && mode != player.ModeReading {
		RespondWithError(w, http.StatusBadRequest, "Mode must be 'listening' or 'reading'")
		return
	}

	book, err := s.catalog.FindBook(r.Context(), payload.BookID)
	if err != nil {
		// Both the direct lookup and the bucket fallback came up empty.
		RespondWithRedirect(w, http.StatusNotFound, "Book not found", "/for-you")
		return
	}

	session, err := s.players.Open(s.stateFor(user), *book, mode)
	switch {
	case errors.Is(err, player.ErrNotAuthenticated):
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	case errors.Is(err, player.ErrSubscriptionRequired):
		RespondWithRedirect(w, http.StatusPaymentRequired, "Active subscription required", "/choose-plan")
		return
	case err != nil:
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusCreated, session.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handleSetMetadata(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Duration float64 `json:"duration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.SetMetadata(payload.Duration)
	})
}

func (s *Server) handleTogglePlay(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		return session.TogglePlay()
	})
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Time float64 `json:"time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.Seek(payload.Time)
	})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Delta float64 `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.SkipBy(payload.Delta)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Time float64 `json:"time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.Advance(payload.Time)
	})
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Rate float64 `json:"rate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.SetPlaybackRate(payload.Rate)
	})
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			Volume float64 `json:"volume"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.SetVolume(payload.Volume)
	})
}

func (s *Server) handleSetFontSize(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			FontSize int `json:"font_size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		return session.SetFontSize(payload.FontSize)
	})
}

func (s *Server) handleScrollSample(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		var payload struct {
			ScrollTop      float64 `json:"scroll_top"`
			ScrollHeight   float64 `json:"scroll_height"`
			ViewportHeight float64 `json:"viewport_height"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return errBadPayload
		}
		_, err := session.SampleScroll(payload.ScrollTop, payload.ScrollHeight, payload.ViewportHeight)
		return err
	})
}

// handleSessionBookmark is the bookmark affordance inside the read/listen
// views. The guard lives in the session: a signed-out state aborts with no
// partial change and the client surfaces the auth prompt.
func (s *Server) handleSessionBookmark(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	bookmarked, err := session.ToggleBookmark()
	if err != nil {
		if errors.Is(err, player.ErrNotAuthenticated) {
			RespondWithRedirect(w, http.StatusUnauthorized, err.Error(), "/")
			return
		}
		RespondWithError(w, http.StatusGone, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

func (s *Server) handleEnded(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(session *player.Session) error {
		return session.HandleEnded()
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.players.Close(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusOK)
}

var errBadPayload = errors.New("invalid request payload")

func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*player.Session, bool) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	session, ok := s.players.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return session, true
}

// sessionAction wraps the shared plumbing of the per-session endpoints: look
// the session up, run the action, translate errors, answer with a snapshot.
func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, action func(*player.Session) error) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	if err := action(session); err != nil {
		switch {
		case errors.Is(err, errBadPayload):
			RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, player.ErrSessionClosed):
			RespondWithError(w, http.StatusGone, err.Error())
		case errors.Is(err, player.ErrNotReady):
			RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, player.ErrNotAuthenticated):
			RespondWithError(w, http.StatusUnauthorized, err.Error())
		default:
			RespondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	RespondWithJSON(w, http.StatusOK, session.Snapshot())
}
