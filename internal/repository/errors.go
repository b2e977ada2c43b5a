// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrUsernameExists is returned when registering a username that is
// already taken. Handlers translate this into an HTTP 409 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrMovieExists is returned when inserting a movie whose title already
// exists. Handlers translate this into an HTTP 409 response.
var ErrMovieExists = errors.New("movie already exists")

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrRatingNotFound is returned when a rating lookup matches no row.
var ErrRatingNotFound = errors.New("rating not found")

// ErrAlreadyRated is returned when a user attempts a second rating for
// the same movie. The UNIQUE(user_id, movie_id) index raises this even
// when two requests pass the existence pre-check concurrently.
var ErrAlreadyRated = errors.New("already rated")

// ErrFileNotFound is returned when an uploaded file record is missing.
var ErrFileNotFound = errors.New("file not found")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062). The unique indexes on users.username, movies.title and
// ratings(user_id, movie_id) are the authoritative uniqueness guards.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
