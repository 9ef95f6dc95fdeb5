package config

import (
	"os"

	"github.com/joho/godotenv"
	pkglogger "github.com/openheritage/heritage-backend/pkg/logger"
)

// LoadDotEnv loads environment variables from .env files.
// .env.local takes precedence over .env; both are optional.
func LoadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			pkglogger.Warn("failed to load %s: %v", name, err)
			continue
		}
		pkglogger.Info("loaded environment from %s", name)
	}
}
