// This file defines the core data structures (models) for our application.
// These structs represent the books served by the catalog and the state
// derived from them.

package models

import "strings"

// Book represents a single book summary in the catalog. Books are created
// server-side by the catalog service and are read-only on our side; they are
// only ever copied into a user's library or finished set.
type Book struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Author               string   `json:"author"`
	SubTitle             string   `json:"subTitle"`
	ImageLink            string   `json:"imageLink"`
	AudioLink            string   `json:"audioLink"`
	TotalRating          int      `json:"totalRating"`
	AverageRating        float64  `json:"averageRating"`
	KeyIdeas             int      `json:"keyIdeas"`
	Type                 string   `json:"type"`
	Status               string   `json:"status"`
	SubscriptionRequired bool     `json:"subscriptionRequired"`
	Summary              string   `json:"summary"`
	Tags                 []string `json:"tags"`
	BookDescription      string   `json:"bookDescription"`
	AuthorDescription    string   `json:"authorDescription"`
}

// ReadingText returns the text shown in the reading view: the full book
// description when present, otherwise the short summary.
func (b *Book) ReadingText() string {
	if strings.TrimSpace(b.BookDescription) != "" {
		return b.BookDescription
	}
	return b.Summary
}
