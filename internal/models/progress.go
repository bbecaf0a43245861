package models

// ProgressUpdate is the payload pushed over the websocket hub while a media
// session is active.
type ProgressUpdate struct {
	SessionID   string  `json:"session_id"`
	BookID      string  `json:"book_id"`
	Mode        string  `json:"mode"` // "listening" or "reading"
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Percent     float64 `json:"percent"`
	IsPlaying   bool    `json:"is_playing"`
	Finished    bool    `json:"finished"`
}
