package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	Debug          bool
	LogLevel       string
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string
	RedisURL       string // optional; traffic stats and error log are skipped without it
	CORSOrigins    []string
	HealthAdminKey string
	KafkaBrokers   []string // optional; contract events are only stored locally without it
	KafkaTopic     string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "energy_marketplace.db")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("KAFKA_TOPIC", "contract-events")
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		Debug:          v.GetBool("DEBUG"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		RedisURL:       v.GetString("REDIS_URL"),
		CORSOrigins:    parseList(v.GetString("CORS_ORIGINS")),
		HealthAdminKey: v.GetString("HEALTH_ADMIN_KEY"),
		KafkaBrokers:   parseList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
