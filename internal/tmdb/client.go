// Package tmdb wraps the external movie/TV metadata API. The core stores a
// snapshot of what this client returns at swipe time and never re-queries it
// for match evaluation.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mityasmirnov/AnyMatch/internal/config"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	"golang.org/x/time/rate"
)

// Movie is the provider's raw result shape; movies use title/release_date,
// TV uses name/first_air_date.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Media is the normalized shape handed to clients and snapshotted on swipes.
type Media struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Overview string         `json:"overview"`
	Poster   string         `json:"poster"`
	Backdrop string         `json:"backdrop"`
	Type     db.ContentType `json:"type"`
	Genres   []int64        `json:"genres"`
	// Rating is the provider's 0–10 vote average scaled to a 0–100 integer.
	Rating int    `json:"rating"`
	Year   string `json:"year"`
}

const imageBase = "https://image.tmdb.org/t/p/w500"

// Client is a rate-limited metadata API client. The limiter replaces the
// original module-level daily-quota counter with an injectable object.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient builds a client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.TMDB.BaseURL, "/"),
		apiKey:      cfg.TMDB.APIKey,
		accessToken: cfg.TMDB.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.TMDB.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.TMDB.RequestsPerSecond), 1),
	}
}

// NewClientWithLimiter lets tests inject a permissive limiter and base URL.
func NewClientWithLimiter(baseURL string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb api error: %d %s: %s", resp.StatusCode, resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// MovieGenres returns the movie genre list.
func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	var data struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &data); err != nil {
		return nil, err
	}
	return data.Genres, nil
}

// TVGenres returns the TV genre list.
func (c *Client) TVGenres(ctx context.Context) ([]Genre, error) {
	var data struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/tv/list", nil, &data); err != nil {
		return nil, err
	}
	return data.Genres, nil
}

// DiscoverParams are the catalog discovery filters.
type DiscoverParams struct {
	Page      int
	Genres    []int64
	MinRating int // 0–100 scale
}

func (p DiscoverParams) values() url.Values {
	v := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("sort_by", "popularity.desc")
	if len(p.Genres) > 0 {
		parts := make([]string, len(p.Genres))
		for i, g := range p.Genres {
			parts[i] = strconv.FormatInt(g, 10)
		}
		v.Set("with_genres", strings.Join(parts, ","))
	}
	if p.MinRating > 0 {
		v.Set("vote_average.gte", strconv.FormatFloat(float64(p.MinRating)/10, 'f', 1, 64))
	}
	return v
}

// DiscoverMovies queries the movie catalog with filters.
func (c *Client) DiscoverMovies(ctx context.Context, p DiscoverParams) (Page, error) {
	var page Page
	err := c.get(ctx, "/discover/movie", p.values(), &page)
	return page, err
}

// DiscoverTV queries the TV catalog with filters.
func (c *Client) DiscoverTV(ctx context.Context, p DiscoverParams) (Page, error) {
	var page Page
	err := c.get(ctx, "/discover/tv", p.values(), &page)
	return page, err
}

// SearchMulti searches movies and TV in one call.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("query", query)
	v.Set("page", strconv.Itoa(page))
	var res Page
	err := c.get(ctx, "/search/multi", v, &res)
	return res, err
}

// MovieDetails fetches one movie by provider id.
func (c *Client) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	var m Movie
	err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &m)
	return m, err
}

// TVDetails fetches one TV show by provider id.
func (c *Client) TVDetails(ctx context.Context, id int64) (Movie, error) {
	var m Movie
	err := c.get(ctx, "/tv/"+strconv.FormatInt(id, 10), nil, &m)
	return m, err
}

// Normalize converts a raw provider result into the snapshot shape.
// contentType disambiguates when media_type is absent (typed endpoints).
func Normalize(m Movie, contentType db.ContentType) Media {
	title := m.Title
	date := m.ReleaseDate
	if title == "" {
		title = m.Name
		date = m.FirstAirDate
	}
	if m.MediaType == "tv" {
		contentType = db.ContentTV
	} else if m.MediaType == "movie" {
		contentType = db.ContentMovie
	}

	var poster, backdrop string
	if m.PosterPath != "" {
		poster = imageBase + m.PosterPath
	}
	if m.BackdropPath != "" {
		backdrop = imageBase + m.BackdropPath
	}

	var year string
	if len(date) >= 4 {
		year = date[:4]
	}

	return Media{
		ID:       strconv.FormatInt(m.ID, 10),
		Title:    title,
		Overview: m.Overview,
		Poster:   poster,
		Backdrop: backdrop,
		Type:     contentType,
		Genres:   m.GenreIDs,
		Rating:   int(m.VoteAverage * 10),
		Year:     year,
	}
}
