package myconfig

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`

	Social SocialConfig

	DashboardPath string `env:"DASHBOARD_PATH" envDefault:"/dashboard"`

	StripeAPIKey        string `env:"STRIPE_API_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	MollieAPIKey        string `env:"MOLLIE_API_KEY"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
	LocationID         string `env:"LOCATION_ID"`
	QueueName          string `env:"QUEUE_NAME" envDefault:"default"`
}

// SocialConfig is deliberately not validated at startup: a missing value is reported
// per request, so the rest of the site keeps working.
type SocialConfig struct {
	ClientKey    string `env:"SOCIAL_CLIENT_KEY"`
	ClientSecret string `env:"SOCIAL_CLIENT_SECRET"`
	RedirectURI  string `env:"SOCIAL_REDIRECT_URI"`
	AuthHostname string `env:"SOCIAL_AUTH_HOSTNAME" envDefault:"https://www.tiktok.com"`
	APIHostname  string `env:"SOCIAL_API_HOSTNAME" envDefault:"https://open.tiktokapis.com"`
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (sc SocialConfig) MissingForLogin() []string {
	missing := []string{}
	if sc.ClientKey == "" {
		missing = append(missing, "SOCIAL_CLIENT_KEY")
	}
	if sc.RedirectURI == "" {
		missing = append(missing, "SOCIAL_REDIRECT_URI")
	}
	return missing
}

func (sc SocialConfig) MissingForTokenExchange() []string {
	missing := sc.MissingForLogin()
	if sc.ClientSecret == "" {
		missing = append(missing, "SOCIAL_CLIENT_SECRET")
	}
	return missing
}

// Load reads an optional .env file (ENV_FILE_PATH, default .env) and then the process environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE_PATH")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		err = godotenv.Load(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	cfg := Config{}
	err := env.Parse(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}

	return cfg, nil
}
