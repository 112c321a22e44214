package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads the first existing .env file. Variables already set in
// the environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}
