package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-service/internal/repository"
)

// moviesPerPage is the fixed page size of the catalog listing.
const moviesPerPage = 20

// MovieHandler bundles dependencies for the movie catalog endpoints.
type MovieHandler struct {
	Movies  *repository.MovieRepo
	Ratings *repository.RatingRepo
}

func NewMovieHandler(m *repository.MovieRepo, r *repository.RatingRepo) *MovieHandler {
	return &MovieHandler{Movies: m, Ratings: r}
}

type addMovieReq struct {
	Title string `json:"title"`
}

type movieDetail struct {
	repository.Movie
	Ratings []repository.MovieRating `json:"ratings"`
}

type movieListResp struct {
	Movies      []*repository.Movie `json:"movies"`
	TotalPages  int                 `json:"total_pages"`
	CurrentPage int                 `json:"current_page"`
}

// AddMovie inserts a new movie by title.  Admin only (enforced by the
// router's middleware chain).  Duplicate titles yield 409; the comparison
// is exact and case-sensitive via the unique index.
func (h *MovieHandler) AddMovie(c echo.Context) error {
	var req addMovieReq
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Movies.Create(ctx, req.Title)
	if err != nil {
		if err == repository.ErrMovieExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Movie already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not add movie"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Movie added successfully", "movie_id": id})
}

// ListMovies returns one fixed-size page of the catalog ordered by id,
// along with the total page count.  Page defaults to 1; pages beyond the
// end return an empty list rather than an error.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	page := 1
	if p := c.QueryParam("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, err := h.Movies.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	movies, err := h.Movies.List(ctx, page, moviesPerPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if movies == nil {
		movies = []*repository.Movie{}
	}

	return c.JSON(http.StatusOK, movieListResp{
		Movies:      movies,
		TotalPages:  (total + moviesPerPage - 1) / moviesPerPage,
		CurrentPage: page,
	})
}

// GetMovie returns a movie's full detail plus all of its ratings as
// (user_id, rating) pairs.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}

	ratings, err := h.Ratings.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"movie": movieDetail{Movie: *m, Ratings: ratings}})
}
