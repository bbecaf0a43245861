package player_test

import (
	"testing"

	"summarist/internal/models"
	"summarist/internal/player"
	"summarist/internal/state"
)

func authedStore() *state.Store {
	s := state.New(nil)
	s.SetUser(&models.User{UID: "u1", Email: "a@b.c"})
	return s
}

func premiumStore() *state.Store {
	s := state.New(nil)
	s.SetUser(&models.User{
		UID:          "u1",
		Email:        "a@b.c",
		Subscription: &models.Subscription{Status: models.SubStatusActive, Plan: models.SubPlanPremium},
	})
	return s
}

func openListening(t *testing.T, st *state.Store) (*player.Manager, *player.Session) {
	t.Helper()
	m := player.NewManager(95, nil)
	s, err := m.Open(st, models.Book{ID: "b1", Title: "Atomic Habits"}, player.ModeListening)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	return m, s
}

func TestOpenGuards(t *testing.T) {
	t.Run("Requires Authentication", func(t *testing.T) {
		m := player.NewManager(95, nil)
		_, err := m.Open(state.New(nil), models.Book{ID: "b1"}, player.ModeListening)
		if err != player.ErrNotAuthenticated {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Premium Book Requires Subscription", func(t *testing.T) {
		m := player.NewManager(95, nil)
		book := models.Book{ID: "b1", SubscriptionRequired: true}
		_, err := m.Open(authedStore(), book, player.ModeListening)
		if err != player.ErrSubscriptionRequired {
			t.Errorf("expected ErrSubscriptionRequired, got %v", err)
		}
	})

	t.Run("Trial User Stays Gated", func(t *testing.T) {
		m := player.NewManager(95, nil)
		st := state.New(nil)
		st.SetUser(&models.User{
			UID:          "u1",
			Email:        "a@b.c",
			Subscription: &models.Subscription{Status: models.SubStatusTrial, Plan: models.SubPlanPremium},
		})
		book := models.Book{ID: "b1", SubscriptionRequired: true}
		if _, err := m.Open(st, book, player.ModeListening); err != player.ErrSubscriptionRequired {
			t.Errorf("expected ErrSubscriptionRequired for trialing user, got %v", err)
		}
	})

	t.Run("Subscriber Opens Premium Book", func(t *testing.T) {
		m := player.NewManager(95, nil)
		book := models.Book{ID: "b1", SubscriptionRequired: true}
		if _, err := m.Open(premiumStore(), book, player.ModeListening); err != nil {
			t.Errorf("expected premium open to succeed, got %v", err)
		}
	})

	t.Run("Free Book Needs No Subscription", func(t *testing.T) {
		m := player.NewManager(95, nil)
		if _, err := m.Open(authedStore(), models.Book{ID: "b1"}, player.ModeListening); err != nil {
			t.Errorf("expected free open to succeed, got %v", err)
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	t.Run("Listening Starts Loading Until Metadata", func(t *testing.T) {
		_, s := openListening(t, authedStore())
		if got := s.Snapshot().Status; got != player.StatusLoading {
			t.Errorf("expected loading, got %s", got)
		}

		if err := s.TogglePlay(); err != player.ErrNotReady {
			t.Errorf("play before metadata should fail with ErrNotReady, got %v", err)
		}

		if err := s.SetMetadata(300); err != nil {
			t.Fatalf("SetMetadata: %v", err)
		}
		snap := s.Snapshot()
		if snap.Status != player.StatusReady || snap.Duration != 300 {
			t.Errorf("expected ready/300 after metadata, got %s/%v", snap.Status, snap.Duration)
		}
	})

	t.Run("Reading Starts Ready", func(t *testing.T) {
		m := player.NewManager(95, nil)
		s, err := m.Open(authedStore(), models.Book{ID: "b1"}, player.ModeReading)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if got := s.Snapshot().Status; got != player.StatusReady {
			t.Errorf("reading session should start ready, got %s", got)
		}
		if got := s.Snapshot().FontSize; got != player.FontSizeDefault {
			t.Errorf("expected default font size %d, got %d", player.FontSizeDefault, got)
		}
	})

	t.Run("TogglePlay Flips Both Ways", func(t *testing.T) {
		_, s := openListening(t, authedStore())
		s.SetMetadata(300)

		s.TogglePlay()
		if !s.Snapshot().IsPlaying {
			t.Error("expected playing after first toggle")
		}
		s.TogglePlay()
		if s.Snapshot().IsPlaying {
			t.Error("expected paused after second toggle")
		}
	})

	t.Run("Closed Session Rejects Everything", func(t *testing.T) {
		m, s := openListening(t, authedStore())
		s.SetMetadata(300)
		m.Close(s.ID())

		if _, ok := m.Get(s.ID()); ok {
			t.Error("closed session should be forgotten by the manager")
		}
		if err := s.TogglePlay(); err != player.ErrSessionClosed {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
		if err := s.Seek(10); err != player.ErrSessionClosed {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
		if _, err := s.SampleScroll(50, 100, 10); err != player.ErrSessionClosed {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
		// Closing again is a no-op.
		m.Close(s.ID())
	})
}

func TestSeekClamping(t *testing.T) {
	_, s := openListening(t, authedStore())
	s.SetMetadata(300)

	cases := []struct {
		name string
		seek float64
		want float64
	}{
		{"Within Range", 120, 120},
		{"Negative Clamps To Zero", -5, 0},
		{"Past End Clamps To Duration", 1000, 300},
		{"Exactly End", 300, 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.Seek(tc.seek); err != nil {
				t.Fatalf("Seek(%v): %v", tc.seek, err)
			}
			if got := s.Snapshot().CurrentTime; got != tc.want {
				t.Errorf("Seek(%v) landed at %v, want %v", tc.seek, got, tc.want)
			}
		})
	}

	t.Run("SkipBy Clamps Too", func(t *testing.T) {
		s.Seek(5)
		s.SkipBy(-10)
		if got := s.Snapshot().CurrentTime; got != 0 {
			t.Errorf("skip past start landed at %v, want 0", got)
		}
		s.Seek(295)
		s.SkipBy(15)
		if got := s.Snapshot().CurrentTime; got != 300 {
			t.Errorf("skip past end landed at %v, want 300", got)
		}
	})
}

func TestPlaybackRateClamping(t *testing.T) {
	_, s := openListening(t, authedStore())
	s.SetMetadata(300)

	cases := []struct {
		in   float64
		want float64
	}{
		{1.5, 1.5},
		{0.9, 1},   // nearest of 0.75 and 1
		{1.6, 1.5}, // nearest of 1.5 and 2
		{3, 2},
		{0.1, 0.5},
	}
	for _, tc := range cases {
		if err := s.SetPlaybackRate(tc.in); err != nil {
			t.Fatalf("SetPlaybackRate(%v): %v", tc.in, err)
		}
		if got := s.Snapshot().PlaybackRate; got != tc.want {
			t.Errorf("SetPlaybackRate(%v) -> %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestVolumeAndFontSizeClamping(t *testing.T) {
	_, s := openListening(t, authedStore())
	s.SetMetadata(300)

	s.SetVolume(1.7)
	if got := s.Snapshot().Volume; got != 1 {
		t.Errorf("volume clamped to %v, want 1", got)
	}
	s.SetVolume(-0.3)
	if got := s.Snapshot().Volume; got != 0 {
		t.Errorf("volume clamped to %v, want 0", got)
	}

	s.SetFontSize(40)
	if got := s.Snapshot().FontSize; got != player.FontSizeMax {
		t.Errorf("font size clamped to %d, want %d", got, player.FontSizeMax)
	}
	s.SetFontSize(8)
	if got := s.Snapshot().FontSize; got != player.FontSizeMin {
		t.Errorf("font size clamped to %d, want %d", got, player.FontSizeMin)
	}
}

func TestFinishedDetection(t *testing.T) {
	t.Run("Ended Marks Finished Once", func(t *testing.T) {
		st := authedStore()
		_, s := openListening(t, st)
		s.SetMetadata(300)
		s.TogglePlay()

		s.HandleEnded()
		snap := s.Snapshot()
		if snap.IsPlaying {
			t.Error("playback should stop at end of stream")
		}
		if snap.CurrentTime != 300 {
			t.Errorf("position should pin to duration, got %v", snap.CurrentTime)
		}
		if !st.IsFinished("b1") {
			t.Fatal("expected book marked finished")
		}

		// A repeated end event must not duplicate the entry.
		s.HandleEnded()
		s.HandleEnded()
		if got := len(st.Books().FinishedBooks); got != 1 {
			t.Errorf("expected exactly 1 finished entry, got %d", got)
		}
	})

	t.Run("Scroll Threshold Is Level Triggered But Idempotent", func(t *testing.T) {
		st := authedStore()
		m := player.NewManager(95, nil)
		s, err := m.Open(st, models.Book{ID: "b1"}, player.ModeReading)
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		if pct, _ := s.SampleScroll(500, 2000, 800); pct >= 95 {
			t.Fatalf("mid-document sample read as %v%%", pct)
		}
		if st.IsFinished("b1") {
			t.Fatal("book finished below the threshold")
		}

		// 1152/1200 = 96%, then more samples above the threshold.
		for _, top := range []float64{1152, 1164, 1176, 1200} {
			if _, err := s.SampleScroll(top, 2000, 800); err != nil {
				t.Fatalf("SampleScroll(%v): %v", top, err)
			}
		}
		if !st.IsFinished("b1") {
			t.Fatal("expected finished past the threshold")
		}
		if got := len(st.Books().FinishedBooks); got != 1 {
			t.Errorf("repeated samples added %d finished entries, want 1", got)
		}
	})

	t.Run("Short Content Reads As Fully Scrolled", func(t *testing.T) {
		st := authedStore()
		m := player.NewManager(95, nil)
		s, _ := m.Open(st, models.Book{ID: "b1"}, player.ModeReading)

		pct, err := s.SampleScroll(0, 400, 800)
		if err != nil {
			t.Fatalf("SampleScroll: %v", err)
		}
		if pct != 100 {
			t.Errorf("unscrollable content read as %v%%, want 100", pct)
		}
		if !st.IsFinished("b1") {
			t.Error("unscrollable content should finish immediately")
		}
	})

	t.Run("Custom Threshold Is Respected", func(t *testing.T) {
		st := authedStore()
		m := player.NewManager(50, nil)
		s, _ := m.Open(st, models.Book{ID: "b1"}, player.ModeReading)

		s.SampleScroll(600, 2000, 800) // 50%
		if !st.IsFinished("b1") {
			t.Error("expected finished at the configured threshold")
		}
	})
}

func TestToggleBookmark(t *testing.T) {
	t.Run("Requires Authentication", func(t *testing.T) {
		st := state.New(nil)
		st.SetUser(&models.User{UID: "u1"})
		m := player.NewManager(95, nil)
		s, err := m.Open(st, models.Book{ID: "b1"}, player.ModeListening)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		st.Logout()

		if _, err := s.ToggleBookmark(); err != player.ErrNotAuthenticated {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if st.IsInLibrary("b1") {
			t.Error("unauthenticated toggle must not change the library")
		}
	})

	t.Run("Toggles Library Membership", func(t *testing.T) {
		st := authedStore()
		_, s := openListening(t, st)

		added, err := s.ToggleBookmark()
		if err != nil || !added {
			t.Fatalf("first toggle = (%v, %v), want (true, nil)", added, err)
		}
		if !s.Snapshot().IsBookmarked {
			t.Error("snapshot should report the bookmark")
		}

		added, err = s.ToggleBookmark()
		if err != nil || added {
			t.Fatalf("second toggle = (%v, %v), want (false, nil)", added, err)
		}
		if st.IsInLibrary("b1") {
			t.Error("expected bookmark removed")
		}
	})
}

func TestProgressNotifications(t *testing.T) {
	var updates []models.ProgressUpdate
	m := player.NewManager(95, func(u models.ProgressUpdate) {
		updates = append(updates, u)
	})
	st := authedStore()
	s, err := m.Open(st, models.Book{ID: "b1"}, player.ModeListening)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s.SetMetadata(200)
	s.TogglePlay()
	s.Advance(50)

	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	last := updates[len(updates)-1]
	if last.BookID != "b1" || last.CurrentTime != 50 || last.Percent != 25 {
		t.Errorf("unexpected final update: %+v", last)
	}
	if !last.IsPlaying {
		t.Error("final update should report playing")
	}
}
