package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings. Everything is overridable from the
// environment; defaults match the public EduSP web client.
type Config struct {
	Port string

	// Upstream identity
	BaseURL      string
	ClientOrigin string
	UserAgent    string

	// Per-call network timeouts
	ReadTimeout   time.Duration
	SubmitTimeout time.Duration

	// Batch submission
	WorkerCap      int
	TimeMinDefault int // minutes
	TimeMaxDefault int // minutes

	// Optional publication-target cache; empty disables caching entirely
	RedisAddr string
	TargetTTL time.Duration

	// CORS
	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string
}

// Load reads configuration from the environment, loading a .env file first
// if one exists.
func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: failed to load .env: %v", err)
		}
	}

	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("API_BASE_URL", "https://edusp-api.ip.tv")
	v.SetDefault("CLIENT_ORIGIN", "https://trollchipss-tarefas.vercel.app")
	v.SetDefault("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36")
	v.SetDefault("READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SUBMIT_TIMEOUT", 30*time.Second)
	v.SetDefault("WORKER_CAP", 6)
	v.SetDefault("TIME_MIN", 1)
	v.SetDefault("TIME_MAX", 3)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("TARGET_TTL", 5*time.Minute)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET, POST, OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Content-Type, Authorization")
	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetString("PORT"),
		BaseURL:            v.GetString("API_BASE_URL"),
		ClientOrigin:       v.GetString("CLIENT_ORIGIN"),
		UserAgent:          v.GetString("USER_AGENT"),
		ReadTimeout:        v.GetDuration("READ_TIMEOUT"),
		SubmitTimeout:      v.GetDuration("SUBMIT_TIMEOUT"),
		WorkerCap:          v.GetInt("WORKER_CAP"),
		TimeMinDefault:     v.GetInt("TIME_MIN"),
		TimeMaxDefault:     v.GetInt("TIME_MAX"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		TargetTTL:          v.GetDuration("TARGET_TTL"),
		CORSAllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		CORSAllowedMethods: v.GetString("CORS_ALLOWED_METHODS"),
		CORSAllowedHeaders: v.GetString("CORS_ALLOWED_HEADERS"),
	}

	if cfg.WorkerCap < 1 {
		cfg.WorkerCap = 1
	}
	return cfg
}
