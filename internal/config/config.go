package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Client holds configuration for the ecolife CLI.
type Client struct {
	APIBase        string
	SessionPath    string
	CameraDevice   string
	CaptureCommand string
}

// Server holds configuration for the ecolife reference API server.
type Server struct {
	Addr           string
	DatabaseDSN    string
	RedisAddr      string
	JWTSecret      string
	ClassifierAddr string
}

// LoadClient reads client configuration from the environment, honoring a
// local .env file when present.
func LoadClient() *Client {
	_ = godotenv.Load()

	return &Client{
		APIBase:        getEnv("ECOLIFE_API_BASE", "http://localhost:5500"),
		SessionPath:    getEnv("ECOLIFE_SESSION_PATH", defaultSessionPath()),
		CameraDevice:   getEnv("ECOLIFE_CAMERA_DEVICE", "/dev/video0"),
		CaptureCommand: os.Getenv("ECOLIFE_CAPTURE_COMMAND"),
	}
}

// LoadServer reads server configuration from the environment.
func LoadServer() *Server {
	_ = godotenv.Load()

	return &Server{
		Addr:           getEnv("ECOLIFE_ADDR", ":5500"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=ecolife port=5432 sslmode=disable"),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		ClassifierAddr: os.Getenv("CLASSIFIER_ADDR"),
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ecolife-session.db"
	}
	return home + "/.ecolife/session.db"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
