package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title - Shop</title>
  <meta property="og:title" content="Walnut Chess Set" />
  <meta property="og:description" content="Hand-carved walnut chess set." />
  <meta property="og:image" content="https://cdn.example.com/chess.jpg" />
  <meta property="product:price:amount" content="129.99" />
</head>
<body><h1>Walnut Chess Set</h1></body>
</html>`

func TestParseOpenGraph(t *testing.T) {
	res, err := Parse(strings.NewReader(productPage))
	require.NoError(t, err)

	assert.Equal(t, "Walnut Chess Set", res.Name)
	assert.Equal(t, "Hand-carved walnut chess set.", res.Description)
	assert.Equal(t, "https://cdn.example.com/chess.jpg", res.ImageURL)
	assert.Equal(t, 129.99, res.Price)
}

func TestParseFallsBackToTitle(t *testing.T) {
	page := `<html><head><title>  Plain Product  </title></head><body></body></html>`
	res, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Plain Product", res.Name)
	assert.Empty(t, res.Description)
}

func TestFetchAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	res, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Walnut Chess Set", res.Name)
	assert.Equal(t, srv.URL, res.URL)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
