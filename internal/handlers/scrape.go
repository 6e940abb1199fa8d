package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"giftwish/internal/scrape"
)

var scraper = scrape.New()

type scrapeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ScrapeURLHandler fetches a product page and returns field suggestions for
// the item creation form. One attempt; failures are surfaced as 502 so the
// client can tell "your url is broken" apart from "we are broken".
func ScrapeURLHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := authenticate(r); err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "a valid url is required", http.StatusBadRequest)
		return
	}

	result, err := scraper.Fetch(r.Context(), req.URL)
	if err != nil {
		log.Infof("scrape failed for %q: %v", req.URL, err)
		http.Error(w, "failed to scrape url", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
