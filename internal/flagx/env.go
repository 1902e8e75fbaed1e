package flagx

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// dotenvCandidates are the locations searched for a .env file, nearest first.
var dotenvCandidates = []string{".env", filepath.Join("..", ".env")}

// LoadDotenv loads the first .env file found among the candidate paths into
// the process environment without overriding variables that are already
// set. It returns the loaded path, or "" if none was found.
func LoadDotenv() (string, error) {
	for _, p := range dotenvCandidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", err
		}
		return p, nil
	}
	return "", nil
}

// ParseEnv decodes environment variables with the given prefix into dst,
// a pointer to a struct tagged for envconfig.
func ParseEnv(prefix string, dst any) error {
	return envconfig.Process(prefix, dst)
}
