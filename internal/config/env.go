package config

import (
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files win since godotenv never
// overrides variables that are already set.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the env files found in dir. Missing files are skipped.
func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", path))
		}
	}
}
