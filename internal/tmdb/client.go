// Package tmdb is a minimal client for the themoviedb.org v3 API, used by
// the catalog seeding job.  Only the popular-movies listing is exposed.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Movie is one entry of a popular-movies page.  Optional fields are
// pointers so absent values survive the trip into the movies table as NULL.
type Movie struct {
	Title       string   `json:"title"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
}

// Page is one page of popular-movies results.
type Page struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Results    []Movie `json:"results"`
}

// Client calls the TMDB API with a fixed key.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a Client.  baseURL overrides the production endpoint
// when non-empty (used in tests).
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PopularMovies fetches one page of the popular-movies listing.  Pages are
// 1-based.  Non-200 responses are returned as errors.
func (c *Client) PopularMovies(ctx context.Context, page int) (*Page, error) {
	u := fmt.Sprintf("%s/movie/popular?api_key=%s&language=en-US&page=%d",
		c.baseURL, url.QueryEscape(c.apiKey), page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: page %d: unexpected status %d", page, resp.StatusCode)
	}

	var out Page
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tmdb: decode page %d: %w", page, err)
	}
	return &out, nil
}
