package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv overlays environment variables onto the configuration. Only
// variables that are set replace the current values, so options applied
// before WithEnv act as defaults and options applied after it win.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		if _, explicit := os.LookupEnv("DATABASE_TYPE"); !explicit && c.Database.Type == "memory" {
			c.Database.Type = detectDatabaseType(c)
		}
		return nil
	}
}

// detectDatabaseType infers the repository from connection settings when the
// type was left at its default.
func detectDatabaseType(c *ServerConfig) string {
	url := strings.ToLower(strings.TrimSpace(c.Database.URL))
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		c.Database.MongoURI = c.Database.URL
		c.Database.URL = ""
		return "mongo"
	case strings.TrimSpace(c.Database.MongoURI) != "":
		return "mongo"
	}
	return c.Database.Type
}

// EnvUsage describes every environment variable understood by WithEnv.
func EnvUsage() (string, error) {
	return cleanenv.GetDescription(defaults(), nil)
}
