package api

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nfnt/resize"
)

const coverMaxWidth = 480

// handleCover proxies a book cover image and optionally scales it down.
// Cover links point at third-party hosts; proxying avoids mixed-content and
// CORS trouble and lets us serve small thumbnails for the card grids.
//
// Query parameters:
//   - url: (required) the cover image URL
//   - width: (optional) target width in pixels, capped at 480
func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid URL")
		return
	}
	// Only allow http/https URLs
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		RespondWithError(w, http.StatusBadRequest, "Only http and https URLs are allowed")
		return
	}

	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil || width < 0 {
			RespondWithError(w, http.StatusBadRequest, "Invalid width")
			return
		}
		if width > coverMaxWidth {
			width = coverMaxWidth
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create request")
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("Error proxying cover %s: %v", rawURL, err)
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch cover")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		RespondWithError(w, http.StatusBadGateway, "Cover host returned an error")
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to read cover")
		return
	}

	// No resize requested: pass the original bytes through untouched.
	if width == 0 {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not an image we can decode; serve it as-is rather than failing.
		w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
		w.Write(data)
		return
	}

	resized := resize.Resize(uint(width), 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	// Quality 75 is a good balance for card thumbnails.
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 75}); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to encode thumbnail")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(buf.Bytes())
}
