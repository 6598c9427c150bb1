package siteconfig

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from the .env files at paths, if
// they exist. Variables already set in the environment win. It returns the
// files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("error loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
