package main // Entry point package

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-rating-service/internal/config"
	"github.com/iliyamo/movie-rating-service/internal/database"
	"github.com/iliyamo/movie-rating-service/internal/handler"
	"github.com/iliyamo/movie-rating-service/internal/queue"
	"github.com/iliyamo/movie-rating-service/internal/repository"
	"github.com/iliyamo/movie-rating-service/internal/router"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// Upload directory must exist before the first upload request.
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("create upload dir failed")
	}

	// Redis is optional: nil disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	ratings := repository.NewRatingRepo(db)
	files := repository.NewFileRepo(db)

	h := &router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users),
		Movie:  handler.NewMovieHandler(movies, ratings),
		Rating: handler.NewRatingHandler(movies, ratings),
		File:   handler.NewFileHandler(cfg, files),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	// Background consumer mirrors rating activity into logs/ratings.log.
	// It reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartRatingConsumer(); err != nil {
			log.Warn().Err(err).Msg("rating consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")

	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
