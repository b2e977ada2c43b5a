package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rating-service/internal/queue"
	"github.com/iliyamo/movie-rating-service/internal/repository"
	queue_publisher "github.com/iliyamo/movie-rating-service/internal/service"
)

// RatingHandler bundles dependencies for the rating endpoints.
type RatingHandler struct {
	Movies  *repository.MovieRepo
	Ratings *repository.RatingRepo
}

func NewRatingHandler(m *repository.MovieRepo, r *repository.RatingRepo) *RatingHandler {
	return &RatingHandler{Movies: m, Ratings: r}
}

// ratingReq carries the submitted star value.  The pointer distinguishes a
// missing field from zero, and binding rejects non-integer JSON numbers, so
// "3.5" and "five" both land in the 400 path.
type ratingReq struct {
	Rating *int `json:"rating"`
}

const ratingRangeMsg = "Rating must be an integer between 1 and 5"

// bindRating extracts and validates the 1..5 star value from the body.
func bindRating(c echo.Context) (int, bool) {
	var req ratingReq
	if err := c.Bind(&req); err != nil || req.Rating == nil {
		return 0, false
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return 0, false
	}
	return *req.Rating, true
}

// RateMovie creates the caller's rating for a movie.  The handler pre-checks
// movie existence and prior rating for friendly errors, but the unique
// (user_id, movie_id) index is what actually prevents duplicates under
// concurrent requests.
func (h *RatingHandler) RateMovie(c echo.Context) error {
	value, ok := bindRating(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ratingRangeMsg})
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid movie id"})
	}
	userID := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Movies.GetByID(ctx, movieID); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if _, err := h.Ratings.GetByUserAndMovie(ctx, userID, movieID); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "You have already rated this movie"})
	} else if err != repository.ErrRatingNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}

	id, err := h.Ratings.Create(ctx, userID, movieID, value)
	if err != nil {
		if err == repository.ErrAlreadyRated {
			return c.JSON(http.StatusConflict, echo.Map{"message": "You have already rated this movie"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not save rating"})
	}

	publishRating(queue.RatingCreated, id, userID, movieID, value)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Rating submitted successfully"})
}

// UpdateRating overwrites the caller's existing rating value in place.  The
// original timestamp is kept.
func (h *RatingHandler) UpdateRating(c echo.Context) error {
	value, ok := bindRating(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ratingRangeMsg})
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid movie id"})
	}
	userID := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.Ratings.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if err == repository.ErrRatingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if err := h.Ratings.UpdateValue(ctx, userID, movieID, value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update rating"})
	}

	publishRating(queue.RatingUpdated, rt.ID, userID, movieID, value)
	return c.JSON(http.StatusOK, echo.Map{"message": "Rating updated successfully"})
}

// DeleteOwnRating removes the caller's rating for a movie.
func (h *RatingHandler) DeleteOwnRating(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid movie id"})
	}
	userID := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.Ratings.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if err == repository.ErrRatingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if err := h.Ratings.DeleteByUserAndMovie(ctx, userID, movieID); err != nil {
		if err == repository.ErrRatingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete rating"})
	}

	publishRating(queue.RatingDeleted, rt.ID, userID, movieID, rt.Rating)
	return c.JSON(http.StatusOK, echo.Map{"message": "Rating deleted successfully"})
}

// AdminDeleteRating removes any rating by id, regardless of owner.  Admin
// only (enforced by the router's middleware chain).
func (h *RatingHandler) AdminDeleteRating(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid rating id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ratings.DeleteByID(ctx, id); err != nil {
		if err == repository.ErrRatingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete rating"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Rating deleted successfully"})
}

// ListAllRatings returns every rating row with full fields; timestamps
// serialize as RFC 3339.  No pagination.
func (h *RatingHandler) ListAllRatings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ratings, err := h.Ratings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if ratings == nil {
		ratings = []*repository.Rating{}
	}
	return c.JSON(http.StatusOK, echo.Map{"ratings": ratings})
}

// publishRating fires a rating event at the broker without blocking the
// request.  Failures are logged inside the publisher and dropped here.
func publishRating(event string, ratingID, userID, movieID uint64, value int) {
	ev := queue.RatingEvent{
		Event:      event,
		RatingID:   ratingID,
		UserID:     userID,
		MovieID:    movieID,
		Rating:     value,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishRatingEvent(ctx, ev)
	}()
}
