// The persistence adapter: a small durable key-value layer used to carry the
// signed-in user and the library/finished book sets across process restarts.
// Loads are fail-open (anything malformed reads as absent) and saves are
// best-effort (failures are logged, never surfaced), so persistence can never
// block or roll back an in-memory state change.

package persist

import (
	"database/sql"
	"encoding/json"
	"log"
)

// The fixed set of logical keys the application persists under.
const (
	KeyAuthUser      = "authUser"
	KeyBooksLibrary  = "booksLibrary"
	KeyBooksFinished = "booksFinished"
)

// Adapter is the durable key-value contract. Load returns nil for a missing
// or malformed record; it never reports an error to the caller.
type Adapter interface {
	Load(key string) json.RawMessage
	Save(key string, value interface{})
	Remove(key string)
}

// SQLiteAdapter stores values as JSON text in the app_state table.
type SQLiteAdapter struct {
	db *sql.DB
}

// New creates an adapter backed by the given database handle.
func New(db *sql.DB) *SQLiteAdapter {
	return &SQLiteAdapter{db: db}
}

// Load reads the value stored under key. A missing row, a read error, or a
// stored value that is not valid JSON all read as nil.
func (a *SQLiteAdapter) Load(key string) json.RawMessage {
	var value string
	err := a.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("persist: failed to load %q: %v", key, err)
		}
		return nil
	}
	if !json.Valid([]byte(value)) {
		// Treat any malformed record as absent. There is no versioning or
		// migration scheme for this data.
		log.Printf("persist: discarding malformed record for %q", key)
		return nil
	}
	return json.RawMessage(value)
}

// Save writes value under key, replacing any previous record. Failures are
// logged and swallowed.
func (a *SQLiteAdapter) Save(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("persist: failed to marshal %q: %v", key, err)
		return
	}
	_, err = a.db.Exec(`
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;
	`, key, string(data))
	if err != nil {
		log.Printf("persist: failed to save %q: %v", key, err)
	}
}

// Remove deletes the record stored under key, if any.
func (a *SQLiteAdapter) Remove(key string) {
	if _, err := a.db.Exec("DELETE FROM app_state WHERE key = ?", key); err != nil {
		log.Printf("persist: failed to remove %q: %v", key, err)
	}
}

// Namespaced wraps an adapter and prefixes every key, so each user account
// gets its own copy of the logical keys.
type Namespaced struct {
	inner  Adapter
	prefix string
}

// ForUser scopes an adapter to a user's uid.
func ForUser(inner Adapter, uid string) *Namespaced {
	return &Namespaced{inner: inner, prefix: "user:" + uid + ":"}
}

func (n *Namespaced) Load(key string) json.RawMessage    { return n.inner.Load(n.prefix + key) }
func (n *Namespaced) Save(key string, value interface{}) { n.inner.Save(n.prefix+key, value) }
func (n *Namespaced) Remove(key string)                  { n.inner.Remove(n.prefix + key) }
