package env

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Candidate .env locations, relative to the working directory.
var envFiles = []string{
	".env",          // Current directory
	"../../.env",    // From cmd/tiersync to project root
	"../../../.env", // Fallback for deeper nesting
}

// SetupEnvFile loads the first .env file found into the process environment.
// Variables already set in the environment win. A missing file is not an
// error; containers pass configuration through the environment directly.
func SetupEnvFile() (string, error) {
	for _, envFile := range envFiles {
		err := godotenv.Load(envFile)
		if err == nil {
			return envFile, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return envFile, err
		}
	}
	return "", nil
}

func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
