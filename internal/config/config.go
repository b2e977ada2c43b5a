package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, and a set for the upload extension allow-list.
type Config struct {
	Env               string          // application environment (e.g. "dev", "prod")
	Port              string          // HTTP port to listen on
	DBUser            string          // database username
	DBPass            string          // database password (optional)
	DBHost            string          // database host address
	DBPort            string          // database port number
	DBName            string          // database name
	JWTSecret         string          // secret used to sign JWTs
	AccessTTLMin      int             // access token time-to-live in minutes
	BcryptCost        int             // bcrypt cost for password hashing
	UploadDir         string          // directory where uploaded files are stored
	AllowedExtensions map[string]bool // lower-cased file extensions accepted by /upload
	MigrationsDir     string          // directory containing SQL migration files
	TMDBAPIKey        string          // API key for the catalog seeding job (optional)
	TMDBPages         int             // number of TMDB pages the seeder fetches
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // .env is optional; real env vars win

	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:        mustInt("BCRYPT_COST"),
		UploadDir:         getenv("UPLOAD_DIR", "uploads"),
		AllowedExtensions: parseExtensions(getenv("ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif,pdf,txt,doc,docx")),
		MigrationsDir:     getenv("MIGRATIONS_DIR", "migrations"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		TMDBPages:         atoi(getenv("TMDB_PAGES", "5")),
	}
}

// parseExtensions converts a comma-separated extension list into a lookup
// set.  Entries are lower-cased and a leading dot is stripped so both
// "png" and ".png" configure the same extension.
func parseExtensions(s string) map[string]bool {
	out := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.TrimPrefix(p, ".")
		if p != "" {
			out[p] = true
		}
	}
	return out
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
