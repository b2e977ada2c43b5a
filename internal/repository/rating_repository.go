package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Rating mirrors the 'ratings' table.  Value is constrained to 1..5 at the
// handler boundary; the table enforces one rating per (user, movie).
type Rating struct {
	ID        uint64    `json:"id"`
	Rating    int       `json:"rating"`
	UserID    uint64    `json:"user_id"`
	MovieID   uint64    `json:"movie_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MovieRating is the reduced projection embedded in movie detail responses.
type MovieRating struct {
	UserID uint64 `json:"user_id"`
	Rating int    `json:"rating"`
}

// RatingRepo encapsulates all database queries related to ratings.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo constructs a RatingRepo with the provided DB handle.
func NewRatingRepo(db *sql.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// Create inserts a rating with the current timestamp and returns its ID.
// A duplicate (user, movie) pair maps to ErrAlreadyRated; the unique index
// catches the race where two concurrent requests both passed the handler's
// existence pre-check.
func (r *RatingRepo) Create(ctx context.Context, userID, movieID uint64, value int) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (rating, user_id, movie_id) VALUES (?,?,?)",
		value, userID, movieID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrAlreadyRated
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserAndMovie fetches a user's rating for one movie.  Returns
// ErrRatingNotFound when the pair has no rating.
func (r *RatingRepo) GetByUserAndMovie(ctx context.Context, userID, movieID uint64) (*Rating, error) {
	const q = "SELECT id, rating, user_id, movie_id, timestamp FROM ratings WHERE user_id = ? AND movie_id = ? LIMIT 1"
	var rt Rating
	if err := r.db.QueryRowContext(ctx, q, userID, movieID).Scan(
		&rt.ID, &rt.Rating, &rt.UserID, &rt.MovieID, &rt.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// UpdateValue overwrites the rating value in place.  The timestamp column is
// deliberately left untouched.  Returns ErrRatingNotFound when the caller
// has no rating for the movie.
func (r *RatingRepo) UpdateValue(ctx context.Context, userID, movieID uint64, value int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE ratings SET rating = ? WHERE user_id = ? AND movie_id = ?",
		value, userID, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such rating" from "same value resubmitted": MySQL
		// reports zero affected rows for both, so check existence.
		if _, err := r.GetByUserAndMovie(ctx, userID, movieID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByUserAndMovie removes a user's own rating for a movie.  Returns
// ErrRatingNotFound when no row matched.
func (r *RatingRepo) DeleteByUserAndMovie(ctx context.Context, userID, movieID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM ratings WHERE user_id = ? AND movie_id = ?", userID, movieID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRatingNotFound
	}
	return nil
}

// DeleteByID removes a rating by primary key regardless of owner.  Used by
// the admin endpoint.  Returns ErrRatingNotFound when the id is unknown.
func (r *RatingRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ratings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRatingNotFound
	}
	return nil
}

// ListByMovie returns the (user_id, rating) pairs for one movie, unordered.
func (r *RatingRepo) ListByMovie(ctx context.Context, movieID uint64) ([]MovieRating, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id, rating FROM ratings WHERE movie_id = ?", movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MovieRating{}
	for rows.Next() {
		var mr MovieRating
		if err := rows.Scan(&mr.UserID, &mr.Rating); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every rating row across all users and movies.
func (r *RatingRepo) ListAll(ctx context.Context) ([]*Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, rating, user_id, movie_id, timestamp FROM ratings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Rating
	for rows.Next() {
		rt := new(Rating)
		if err := rows.Scan(&rt.ID, &rt.Rating, &rt.UserID, &rt.MovieID, &rt.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
