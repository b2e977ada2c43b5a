// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Movie model and repository methods for inserts and
// lookups. Movies are created by admins (title only) or by the catalog
// seeding job (full TMDB metadata); the API never updates or deletes them.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Movie represents a movie row. Overview, ReleaseDate, PosterPath and
// VoteAverage are pointers because admin-created movies carry a title only;
// nil marshals to JSON null, matching the wire contract.
type Movie struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
}

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a movie with a title only and returns its ID.  Duplicate
// titles (unique index) map to ErrMovieExists.
func (r *MovieRepo) Create(ctx context.Context, title string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO movies (title) VALUES (?)", title)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrMovieExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateFull inserts a movie with all catalog metadata.  Used by the
// seeding job; duplicate titles map to ErrMovieExists so the seeder can
// skip titles that already exist.
func (r *MovieRepo) CreateFull(ctx context.Context, m *Movie) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, overview, release_date, poster_path, vote_average) VALUES (?,?,?,?,?)",
		m.Title, m.Overview, m.ReleaseDate, m.PosterPath, m.VoteAverage)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrMovieExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by its ID. It returns ErrMovieNotFound if no
// row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = "SELECT id, title, overview, release_date, poster_path, vote_average FROM movies WHERE id = ?"
	var m Movie
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.Overview, &m.ReleaseDate, &m.PosterPath, &m.VoteAverage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExistsByTitle reports whether a movie with the exact title exists.
// The comparison is case-sensitive at the API level; the unique index
// remains the authoritative guard under concurrency.
func (r *MovieRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM movies WHERE title = ? LIMIT 1", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns one page of movies ordered by id ascending.  Pages are
// 1-based; out-of-range pages yield an empty slice, not an error.
func (r *MovieRepo) List(ctx context.Context, page, perPage int) ([]*Movie, error) {
	if page < 1 {
		page = 1
	}
	const q = `SELECT id, title, overview, release_date, poster_path, vote_average
	           FROM movies ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Movie
	for rows.Next() {
		m := new(Movie)
		if err := rows.Scan(&m.ID, &m.Title, &m.Overview, &m.ReleaseDate, &m.PosterPath, &m.VoteAverage); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of movies, used for the total_pages field
// of the paginated listing.
func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
