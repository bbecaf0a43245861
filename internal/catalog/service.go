package catalog

import (
	"context"
	"log"
	"sync"

	"summarist/internal/models"
)

// Service keeps a warm in-process copy of the catalog buckets. The refresher
// job repopulates it from the remote service; a local catalog file, when
// configured, layers curated books on top.
type Service struct {
	client    *Client
	localPath string

	mu      sync.RWMutex
	buckets map[string][]models.Book
	local   map[string][]models.Book
}

// NewService creates a catalog service. localPath may be empty.
func NewService(client *Client, localPath string) *Service {
	return &Service{
		client:    client,
		localPath: localPath,
		buckets:   make(map[string][]models.Book),
		local:     make(map[string][]models.Book),
	}
}

// Refresh pulls all three buckets from the remote catalog. A failed bucket
// keeps its previous contents; the catalog being unreachable is not fatal.
func (s *Service) Refresh(ctx context.Context) {
	for _, status := range Statuses {
		books, err := s.client.GetBooks(ctx, status)
		if err != nil {
			log.Printf("catalog: refresh of %q bucket failed: %v", status, err)
			continue
		}
		s.mu.Lock()
		s.buckets[status] = books
		s.mu.Unlock()
	}
	if s.localPath != "" {
		s.ReloadLocal()
	}
}

// Books returns the bucket for the given status, local books first so a
// curated copy of a remote book wins by id.
func (s *Service) Books(status string) []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	local := s.local[status]
	remote := s.buckets[status]

	out := make([]models.Book, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, b := range local {
		out = append(out, b)
		seen[b.ID] = true
	}
	for _, b := range remote {
		if !seen[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// Selected returns the book of the day, if the selected bucket has one.
func (s *Service) Selected() *models.Book {
	books := s.Books("selected")
	if len(books) == 0 {
		return nil
	}
	return &books[0]
}

// FindBook resolves an id: warm cache first, then the remote lookup with its
// single bucket-scan fallback.
func (s *Service) FindBook(ctx context.Context, id string) (*models.Book, error) {
	s.mu.RLock()
	for _, status := range Statuses {
		for _, bucket := range [][]models.Book{s.local[status], s.buckets[status]} {
			for i := range bucket {
				if bucket[i].ID == id {
					book := bucket[i]
					s.mu.RUnlock()
					return &book, nil
				}
			}
		}
	}
	s.mu.RUnlock()

	return s.client.FindBook(ctx, id)
}
