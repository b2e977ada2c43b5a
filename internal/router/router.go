package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-rating-service/internal/config"
	"github.com/iliyamo/movie-rating-service/internal/handler"
	"github.com/iliyamo/movie-rating-service/internal/middleware"
)

// Handlers groups the per-domain handler bundles that the route table
// dispatches to.  Construct it once at startup with the shared repositories
// and pass it to Register.
type Handlers struct {
	Auth   *handler.AuthHandler
	Movie  *handler.MovieHandler
	Rating *handler.RatingHandler
	File   *handler.FileHandler
}

// Register wires the full route table onto the Echo instance.  Each route
// gets exactly one of three policies applied as a middleware chain before
// dispatch: open, authenticated (valid token), or admin (valid token with
// the admin claim).  The Redis-backed rate limiter runs inside the JWT
// chain on authenticated routes so the user_route key strategy sees the
// caller's id rather than "guest"; both the limiter and the response cache
// degrade to pass-throughs when rdb is nil.
func Register(e *echo.Echo, h *Handlers, cfg config.Config, rdb *redis.Client) {
	authed := middleware.JWTAuth(cfg.JWTSecret)
	admin := middleware.RequireAdmin()
	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cached := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	// Health endpoint stays outside the limiter so probes never 429.
	e.GET("/healthz", handler.Health)

	e.POST("/register", h.Auth.Register, limited)
	e.POST("/login", h.Auth.Login, limited)

	// Movie catalog: public reads, admin-only writes.  The listing carries
	// no rating data so it may be cached; the detail embeds live ratings
	// and must reflect rating writes immediately, so it is never cached.
	e.GET("/movies", h.Movie.ListMovies, limited, cached)
	e.GET("/movies/:id", h.Movie.GetMovie, limited)
	e.POST("/movies", h.Movie.AddMovie, authed, limited, admin)

	// Ratings: authenticated, with one admin-only delete
	e.POST("/movies/:id/rate", h.Rating.RateMovie, authed, limited)
	e.PUT("/movies/:id/rate", h.Rating.UpdateRating, authed, limited)
	e.DELETE("/movies/:id/rate", h.Rating.DeleteOwnRating, authed, limited)
	e.GET("/ratings", h.Rating.ListAllRatings, authed, limited)
	e.DELETE("/ratings/:id", h.Rating.AdminDeleteRating, authed, limited, admin)

	// Files: upload/list/download/delete; owner-or-admin checks live in the
	// handler because they need the record's owner from the database
	e.POST("/upload", h.File.Upload, authed, limited)
	e.GET("/files", h.File.ListAllFiles, authed, limited, admin)
	e.GET("/users/me/files", h.File.ListOwnFiles, authed, limited)
	e.GET("/files/:id", h.File.Download, authed, limited)
	e.DELETE("/files/:id", h.File.Delete, authed, limited)
}
