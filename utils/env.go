package utils

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory if there is one.
// It reports whether a file was loaded.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// GetDatabaseURL returns DATABASE_URL from the environment.
func GetDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}
