package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	Env                 string
	StripeSecretKey     string
	StripeWebhookSecret string
	ClerkSecretKey      string
	FrontendURL         string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8082"),
		Env:                 getEnv("ENV", "development"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ClerkSecretKey:      os.Getenv("CLERK_SECRET_KEY"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" || cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
