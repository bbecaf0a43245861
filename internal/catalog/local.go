package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"summarist/internal/models"
)

// ReloadLocal re-reads the local catalog file and replaces the curated
// books. The file is a JSON array of books; each book's status field decides
// which bucket it lands in. A missing or malformed file leaves the previous
// curated set in place.
func (s *Service) ReloadLocal() {
	books, err := loadLocalFile(s.localPath)
	if err != nil {
		log.Printf("catalog: local catalog %s not loaded: %v", s.localPath, err)
		return
	}

	local := make(map[string][]models.Book)
	for _, b := range books {
		status := b.Status
		if status == "" {
			status = "suggested"
		}
		local[status] = append(local[status], b)
	}

	s.mu.Lock()
	s.local = local
	s.mu.Unlock()
	log.Printf("catalog: loaded %d curated books from %s", len(books), s.localPath)
}

func loadLocalFile(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("malformed catalog file: %w", err)
	}
	valid := books[:0]
	for _, b := range books {
		if b.ID != "" {
			valid = append(valid, b)
		}
	}
	return valid, nil
}
