package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string
	// ClerkWebhookSecret and StripeSecretKey are deliberately not required at
	// startup: the webhook endpoint answers 500 while they are missing, the
	// rest of the storefront keeps serving.
	ClerkWebhookSecret string
	StripeSecretKey    string
	RedisAddr          string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		Env:                getEnv("ENV", "development"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
