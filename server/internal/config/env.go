package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE pairs from each file into the process environment.
// Variables already set are not overridden and missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("server config: load env %q: %w", f, err)
		}
	}
	return nil
}
