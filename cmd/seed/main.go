// Command seed populates the movies table from the TMDB popular-movies
// listing.  It runs out-of-band as a one-shot batch job: each fetched title
// is inserted unless a movie with the same title already exists, in which
// case it is skipped.  Committed rows stay committed when a later page
// fails.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-rating-service/internal/config"
	"github.com/iliyamo/movie-rating-service/internal/database"
	"github.com/iliyamo/movie-rating-service/internal/repository"
	"github.com/iliyamo/movie-rating-service/internal/tmdb"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.TMDBAPIKey == "" {
		log.Fatal().Msg("TMDB_API_KEY is required for seeding")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	movies := repository.NewMovieRepo(db)
	client := tmdb.NewClient(cfg.TMDBAPIKey, "")
	ctx := context.Background()

	inserted, skipped := 0, 0
	for page := 1; page <= cfg.TMDBPages; page++ {
		res, err := client.PopularMovies(ctx, page)
		if err != nil {
			log.Error().Err(err).Int("page", page).Msg("fetch failed; stopping")
			break
		}
		if len(res.Results) == 0 {
			log.Info().Int("page", page).Msg("no movies on page; stopping")
			break
		}

		for _, mv := range res.Results {
			if mv.Title == "" {
				continue
			}
			m := &repository.Movie{
				Title:       mv.Title,
				Overview:    mv.Overview,
				ReleaseDate: mv.ReleaseDate,
				PosterPath:  mv.PosterPath,
				VoteAverage: mv.VoteAverage,
			}
			switch err := movies.CreateFull(ctx, m); err {
			case nil:
				inserted++
			case repository.ErrMovieExists:
				skipped++
			default:
				log.Error().Err(err).Str("title", mv.Title).Msg("insert failed")
			}
		}

		if res.TotalPages > 0 && page >= res.TotalPages {
			break
		}
	}

	log.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("seeding done")
}
