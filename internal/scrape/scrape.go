// Package scrape pre-fills item creation forms from a product page URL.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxBodyBytes caps how much of a product page is fetched. Metadata lives in
// <head>, so a truncated read is fine.
const maxBodyBytes = 1 << 20

// Result holds the field suggestions scraped from a product page.
type Result struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Price       float64 `json:"price,omitempty"`
	URL         string  `json:"url"`
}

// Scraper fetches and parses product pages. The zero value is not usable;
// call New.
type Scraper struct {
	client *http.Client
}

func New() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads the page at url and extracts OpenGraph/title metadata.
// Single attempt; any failure is returned to the caller as-is.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", "giftwish/1.0 (+item preview)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	result, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	result.URL = url
	return result, nil
}

// Parse extracts metadata from an HTML document. Preference order per field:
// OpenGraph tags, then twitter card tags, then the document <title>.
func Parse(r io.Reader) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var res Result
	var title string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key, content := metaAttrs(n)
				applyMeta(&res, key, content)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if res.Name == "" {
		res.Name = title
	}
	return &res, nil
}

func metaAttrs(n *html.Node) (key, content string) {
	for _, a := range n.Attr {
		switch a.Key {
		case "property", "name":
			if key == "" {
				key = a.Val
			}
		case "content":
			content = a.Val
		}
	}
	return key, content
}

func applyMeta(res *Result, key, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	switch key {
	case "og:title":
		res.Name = content
	case "og:description", "twitter:description":
		if res.Description == "" {
			res.Description = content
		}
	case "og:image", "twitter:image":
		if res.ImageURL == "" {
			res.ImageURL = content
		}
	case "og:price:amount", "product:price:amount":
		if res.Price == 0 {
			if p, err := strconv.ParseFloat(strings.ReplaceAll(content, ",", ""), 64); err == nil {
				res.Price = p
			}
		}
	case "twitter:title":
		if res.Name == "" {
			res.Name = content
		}
	}
}
