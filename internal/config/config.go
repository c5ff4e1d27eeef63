package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	Port             string
	MongoURI         string
	DBName           string
	JWTSecret        string
	TokenExpiryHours int
	ClientOrigin     string
	UploadDir        string
}

// LoadConfig reads configuration from a .env file (if present) and the
// process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, relying on environment variables")
	}

	expiry := 72
	if raw := os.Getenv("TOKEN_EXPIRY_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.WithField("TOKEN_EXPIRY_HOURS", raw).Warn("Invalid token expiry, using default")
		} else {
			expiry = parsed
		}
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "crowdsolve"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenExpiryHours: expiry,
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
