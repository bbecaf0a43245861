// The media session state machine shared by the listen and read experiences.
// A session is created when a book's view opens and released when it closes;
// it owns the transient playback state and writes bookmark/finished results
// back into the state store.

package player

import (
	"errors"
	"math"
	"sync"

	"summarist/internal/models"
	"summarist/internal/state"
)

// Status is the lifecycle of a session. Pausing is not a separate status;
// Playing with isPlaying=false is just Ready with the position retained.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

// Mode selects the experience the session drives.
type Mode string

const (
	ModeListening Mode = "listening"
	ModeReading   Mode = "reading"
)

// AllowedRates is the fixed set of playback speeds. SetPlaybackRate clamps
// out-of-set values to the nearest member rather than rejecting them.
var AllowedRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Font size bounds for the reading view.
const (
	FontSizeMin     = 14
	FontSizeMax     = 24
	FontSizeStep    = 2
	FontSizeDefault = 18
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrSessionClosed        = errors.New("session closed")
	ErrNotReady             = errors.New("media not ready")
)

// Notifier receives progress updates as the session advances. The websocket
// hub satisfies this through a small adapter in the API layer.
type Notifier func(models.ProgressUpdate)

// Session is a single read/listen session for one book.
type Session struct {
	mu sync.Mutex

	id    string
	mode  Mode
	book  models.Book
	store *state.Store

	status      Status
	isPlaying   bool
	currentTime float64
	duration    float64
	rate        float64
	volume      float64

	fontSize        int
	progressPercent float64
	finishThreshold float64

	closed bool
	notify Notifier
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Book returns the book this session was opened for.
func (s *Session) Book() models.Book { return s.book }

// Snapshot is the transient state exposed to the API layer.
type Snapshot struct {
	ID              string  `json:"id"`
	BookID          string  `json:"book_id"`
	Mode            Mode    `json:"mode"`
	Status          Status  `json:"status"`
	IsPlaying       bool    `json:"is_playing"`
	CurrentTime     float64 `json:"current_time"`
	Duration        float64 `json:"duration"`
	PlaybackRate    float64 `json:"playback_rate"`
	Volume          float64 `json:"volume"`
	FontSize        int     `json:"font_size"`
	ProgressPercent float64 `json:"progress_percent"`
	IsBookmarked    bool    `json:"is_bookmarked"`
	IsFinished      bool    `json:"is_finished"`
}

// Snapshot returns a copy of the session state plus the book's current
// membership in the library and finished sets.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:              s.id,
		BookID:          s.book.ID,
		Mode:            s.mode,
		Status:          s.status,
		IsPlaying:       s.isPlaying,
		CurrentTime:     s.currentTime,
		Duration:        s.duration,
		PlaybackRate:    s.rate,
		Volume:          s.volume,
		FontSize:        s.fontSize,
		ProgressPercent: s.progressPercent,
		IsBookmarked:    s.store.IsInLibrary(s.book.ID),
		IsFinished:      s.store.IsFinished(s.book.ID),
	}
}

// SetMetadata records the media duration and moves Loading to Ready. The
// media element reports this once its metadata arrives.
func (s *Session) SetMetadata(duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if duration < 0 {
		duration = 0
	}
	s.duration = duration
	if s.status == StatusLoading {
		s.status = StatusReady
	}
	s.publishLocked()
	return nil
}

// TogglePlay flips the playing flag. Starting from Ready and resuming from a
// pause are the same transition.
func (s *Session) TogglePlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.status != StatusReady {
		return ErrNotReady
	}
	s.isPlaying = !s.isPlaying
	s.publishLocked()
	return nil
}

// Seek moves the position to t clamped into [0, duration]. Playing state is
// unchanged.
func (s *Session) Seek(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.currentTime = clamp(t, 0, s.duration)
	s.publishLocked()
	return nil
}

// SkipBy advances or rewinds by delta seconds, clamped like Seek. The listen
// view uses ±10 and ±15 second steps.
func (s *Session) SkipBy(delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.currentTime = clamp(s.currentTime+delta, 0, s.duration)
	s.publishLocked()
	return nil
}

// Advance records a time update from the underlying media element.
func (s *Session) Advance(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.currentTime = clamp(t, 0, s.duration)
	s.publishLocked()
	return nil
}

// SetPlaybackRate sets the speed, clamped to the nearest allowed rate.
func (s *Session) SetPlaybackRate(r float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.rate = nearestRate(r)
	s.publishLocked()
	return nil
}

// SetVolume sets the volume, clamped into [0, 1].
func (s *Session) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.volume = clamp(v, 0, 1)
	s.publishLocked()
	return nil
}

// SetFontSize sets the reading font size, clamped into the allowed range.
func (s *Session) SetFontSize(px int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if px < FontSizeMin {
		px = FontSizeMin
	}
	if px > FontSizeMax {
		px = FontSizeMax
	}
	s.fontSize = px
	return nil
}

// HandleEnded is the end-of-stream hook for listening sessions. It stops
// playback and marks the book finished once. The guard is the finished-set
// membership itself, not a local flag, so a repeated end event stays a no-op.
func (s *Session) HandleEnded() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.isPlaying = false
	s.currentTime = s.duration
	book := s.book
	st := s.store
	s.publishLocked()
	s.mu.Unlock()

	if !st.IsFinished(book.ID) {
		st.AddToFinished(book)
	}
	return nil
}

// SampleScroll records a reading-position sample and returns the derived
// percentage. Crossing the finish threshold marks the book finished; the
// check is level-triggered (it runs on every sample), so the idempotent
// insert in the store is what prevents duplicates.
func (s *Session) SampleScroll(scrollTop, scrollHeight, viewportHeight float64) (float64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	percent := scrollPercent(scrollTop, scrollHeight, viewportHeight)
	s.progressPercent = percent
	threshold := s.finishThreshold
	book := s.book
	st := s.store
	s.publishLocked()
	s.mu.Unlock()

	if percent >= threshold && !st.IsFinished(book.ID) {
		st.AddToFinished(book)
	}
	return percent, nil
}

// ToggleBookmark flips the book's library membership. The action requires a
// signed-in user; when there is none, no state changes and the caller is
// expected to surface the auth prompt. The toggle itself is a single
// read-modify-write inside the store, against the state at this moment.
func (s *Session) ToggleBookmark() (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	book := s.book
	st := s.store
	s.mu.Unlock()

	if !st.IsAuthenticated() {
		return false, ErrNotAuthenticated
	}
	return st.ToggleLibrary(book), nil
}

// Close releases the session. Every later call returns ErrSessionClosed, so
// a stale session that outlived its view can never mark a book finished.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.isPlaying = false
}

// publishLocked pushes a progress update to the notifier. Callers hold the
// session lock; the notifier must not call back into the session.
func (s *Session) publishLocked() {
	if s.notify == nil {
		return
	}
	percent := s.progressPercent
	if s.mode == ModeListening && s.duration > 0 {
		percent = s.currentTime / s.duration * 100
	}
	s.notify(models.ProgressUpdate{
		SessionID:   s.id,
		BookID:      s.book.ID,
		Mode:        string(s.mode),
		CurrentTime: s.currentTime,
		Duration:    s.duration,
		Percent:     percent,
		IsPlaying:   s.isPlaying,
		Finished:    s.store.IsFinished(s.book.ID),
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scrollPercent converts a scroll sample to a 0-100 percentage. Content
// shorter than the viewport reads as fully scrolled.
func scrollPercent(scrollTop, scrollHeight, viewportHeight float64) float64 {
	scrollable := scrollHeight - viewportHeight
	if scrollable <= 0 {
		return 100
	}
	return clamp(scrollTop/scrollable*100, 0, 100)
}

func nearestRate(r float64) float64 {
	best := AllowedRates[0]
	for _, allowed := range AllowedRates[1:] {
		if math.Abs(allowed-r) < math.Abs(best-r) {
			best = allowed
		}
	}
	return best
}
