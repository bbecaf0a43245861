package models_test

import (
	"encoding/json"
	"testing"

	"summarist/internal/models"
)

func TestHasActiveSubscription(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want bool
	}{
		{"Nil User", nil, false},
		{"No Subscription", &models.User{UID: "u1"}, false},
		{"Active", &models.User{Subscription: &models.Subscription{Status: models.SubStatusActive}}, true},
		{"Trialing Stays Gated", &models.User{Subscription: &models.Subscription{Status: models.SubStatusTrial}}, false},
		{"Inactive", &models.User{Subscription: &models.Subscription{Status: models.SubStatusInactive}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.HasActiveSubscription(); got != tc.want {
				t.Errorf("HasActiveSubscription() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReadingTextFallsBackToSummary(t *testing.T) {
	b := models.Book{Summary: "short summary", BookDescription: "long description"}
	if got := b.ReadingText(); got != "long description" {
		t.Errorf("ReadingText() = %q, want the description", got)
	}

	b.BookDescription = "   "
	if got := b.ReadingText(); got != "short summary" {
		t.Errorf("ReadingText() = %q, want the summary fallback", got)
	}
}

func TestUserJSONHidesInternalFields(t *testing.T) {
	user := models.User{
		ID:           7,
		UID:          "u1",
		Email:        "a@b.co",
		PasswordHash: "secret-hash",
	}
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	if _, ok := raw["PasswordHash"]; ok {
		t.Error("password hash must never serialize")
	}
	for k, v := range raw {
		if s, ok := v.(string); ok && s == "secret-hash" {
			t.Errorf("password hash leaked under key %q", k)
		}
	}
	if raw["uid"] != "u1" {
		t.Errorf("uid missing from payload: %v", raw)
	}
}
