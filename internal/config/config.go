package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration loaded from the environment.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry int // hours
	FrontendURL string

	// WebPush (VAPID) keys. When the pair is missing the background
	// notification scheduler is not started at all.
	VAPIDPrivateKey string
	VAPIDPublicKey  string
	VAPIDSubject    string
}

// LoadConfig reads configuration from .env / environment variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	expiry, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "72"))
	if err != nil {
		expiry = 72
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "student_planner"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenExpiry: expiry,
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
	}
}

// PushEnabled reports whether the VAPID key pair is configured.
func (c *Config) PushEnabled() bool {
	return strings.TrimSpace(c.VAPIDPrivateKey) != "" && strings.TrimSpace(c.VAPIDPublicKey) != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
