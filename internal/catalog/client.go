// HTTP client for the external book catalog service. The service speaks
// loose JSON; everything is validated into models.Book at this boundary and
// any shape mismatch is reported as not found rather than an error the
// caller has to distinguish.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"summarist/internal/models"
)

// The three status buckets the catalog serves.
var Statuses = []string{"selected", "recommended", "suggested"}

// ErrNotFound is returned when neither the direct lookup nor the bucket
// fallback produced the book.
var ErrNotFound = errors.New("book not found")

// Client talks to the catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBook fetches a single book by id.
func (c *Client) GetBook(ctx context.Context, id string) (*models.Book, error) {
	endpoint := fmt.Sprintf("%s/getBook?id=%s", c.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var book models.Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return nil, ErrNotFound
	}
	if book.ID == "" {
		// A well-formed response without an id is a shape mismatch,
		// which we treat the same as a 404.
		return nil, ErrNotFound
	}
	return &book, nil
}

// GetBooks fetches one status bucket.
func (c *Client) GetBooks(ctx context.Context, status string) ([]models.Book, error) {
	endpoint := fmt.Sprintf("%s/getBooks?status=%s", c.baseURL, url.QueryEscape(status))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var books []models.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("catalog returned malformed payload: %w", err)
	}
	// Drop entries without an id; they cannot participate in any set.
	valid := books[:0]
	for _, b := range books {
		if b.ID != "" {
			valid = append(valid, b)
		}
	}
	return valid, nil
}

// FindBook looks a book up by id. If the direct lookup fails for any reason,
// it falls back to scanning the three status buckets once. There is no retry
// loop; a failed fallback reports ErrNotFound and the caller redirects away.
func (c *Client) FindBook(ctx context.Context, id string) (*models.Book, error) {
	if book, err := c.GetBook(ctx, id); err == nil {
		return book, nil
	}

	for _, status := range Statuses {
		books, err := c.GetBooks(ctx, status)
		if err != nil {
			continue
		}
		for i := range books {
			if books[i].ID == id {
				return &books[i], nil
			}
		}
	}
	return nil, ErrNotFound
}
