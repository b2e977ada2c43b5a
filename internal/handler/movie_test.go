package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rating-service/internal/repository"
)

var movieCols = []string{"id", "title", "overview", "release_date", "poster_path", "vote_average"}

func newMovieHandler(t *testing.T) (*MovieHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMovieHandler(repository.NewMovieRepo(db), repository.NewRatingRepo(db)), mock
}

func TestAddMovieSuccess(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectExec("INSERT INTO movies").
		WithArgs("Heat").
		WillReturnResult(sqlmock.NewResult(12, 1))

	c, rec := jsonRequest(t, http.MethodPost, "/movies", `{"title":"Heat"}`)
	require.NoError(t, h.AddMovie(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Movie added successfully", resp["message"])
	assert.Equal(t, float64(12), resp["movie_id"])
}

func TestAddMovieDuplicate(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectExec("INSERT INTO movies").
		WithArgs("Heat").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'Heat' for key 'uq_movies_title'"))

	c, rec := jsonRequest(t, http.MethodPost, "/movies", `{"title":"Heat"}`)
	require.NoError(t, h.AddMovie(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Movie already exists")
}

func TestAddMovieMissingTitle(t *testing.T) {
	h, _ := newMovieHandler(t)

	c, rec := jsonRequest(t, http.MethodPost, "/movies", `{}`)
	require.NoError(t, h.AddMovie(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")
}

func listMovies(t *testing.T, h *MovieHandler, target string) (*httptest.ResponseRecorder, movieListResp) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.ListMovies(c))

	var resp movieListResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestListMoviesFirstPage(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery("SELECT id, title, overview, release_date, poster_path, vote_average").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(1, "A", nil, nil, nil, nil).
			AddRow(2, "B", nil, nil, nil, nil))

	rec, resp := listMovies(t, h, "/movies")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Movies, 2)
}

func TestListMoviesPastLastPage(t *testing.T) {
	h, mock := newMovieHandler(t)

	// 45 movies and a fixed page size of 20 make 3 pages; page 4 is empty
	// but still a 200 with the same total_pages.
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery("SELECT id, title, overview, release_date, poster_path, vote_average").
		WithArgs(20, 60).
		WillReturnRows(sqlmock.NewRows(movieCols))

	rec, resp := listMovies(t, h, "/movies?page=4")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, resp.CurrentPage)
	assert.Equal(t, 3, resp.TotalPages)
	assert.NotNil(t, resp.Movies)
	assert.Empty(t, resp.Movies)
}

func TestListMoviesBadPageFallsBackToFirst(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, title, overview, release_date, poster_path, vote_average").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(movieCols))

	rec, resp := listMovies(t, h, "/movies?page=abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 0, resp.TotalPages)
}

func getMovie(t *testing.T, h *MovieHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.GetMovie(c))
	return rec
}

func TestGetMovieWithRatings(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectQuery("SELECT id, title, overview, release_date, poster_path, vote_average FROM movies WHERE id =").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(5, "Heat", "A thief and a cop.", nil, nil, 8.3))
	mock.ExpectQuery("SELECT user_id, rating FROM ratings WHERE movie_id =").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "rating"}).
			AddRow(1, 4).
			AddRow(2, 5))

	rec := getMovie(t, h, "5")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Movie struct {
			ID      uint64  `json:"id"`
			Title   string  `json:"title"`
			Ratings []struct {
				UserID uint64 `json:"user_id"`
				Rating int    `json:"rating"`
			} `json:"ratings"`
		} `json:"movie"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Heat", resp.Movie.Title)
	require.Len(t, resp.Movie.Ratings, 2)
	assert.Equal(t, 5, resp.Movie.Ratings[1].Rating)
}

func TestGetMovieNotFound(t *testing.T) {
	h, mock := newMovieHandler(t)

	mock.ExpectQuery("SELECT id, title, overview, release_date, poster_path, vote_average FROM movies WHERE id =").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(movieCols))

	rec := getMovie(t, h, "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Movie not found")
}

func TestGetMovieBadID(t *testing.T) {
	h, _ := newMovieHandler(t)

	rec := getMovie(t, h, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid movie id")
}
