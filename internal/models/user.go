package models

import "time"

// Subscription statuses and plans as carried on the user record. Entitlement
// checks only ever look at Status; Plan is informational.
const (
	SubStatusActive   = "active"
	SubStatusInactive = "inactive"
	SubStatusTrial    = "trial"

	SubPlanBasic   = "basic"
	SubPlanPremium = "premium"
)

// Subscription is the entitlement record attached to a user.
type Subscription struct {
	Status    string     `json:"status"`
	Plan      string     `json:"plan"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// User is the normalized identity record produced by the auth layer. The
// same shape is persisted under the authUser key and returned by /api/auth/me.
type User struct {
	ID           int64         `json:"-"`
	UID          string        `json:"uid"`
	Email        string        `json:"email"`
	DisplayName  string        `json:"displayName"`
	IsGuest      bool          `json:"isGuest"`
	Subscription *Subscription `json:"subscription,omitempty"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"-"`
}

// HasActiveSubscription reports whether the user may open premium content.
// Only an active subscription entitles; trials stay gated until the
// provider converts them.
func (u *User) HasActiveSubscription() bool {
	if u == nil || u.Subscription == nil {
		return false
	}
	return u.Subscription.Status == SubStatusActive
}
