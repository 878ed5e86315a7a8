package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads variables from the nearest .env file, searching
// upward from the working directory until a go.mod or .git marker is
// found. Later calls are no-ops. Variables already present in the
// environment win unless DOTENV_OVERLOAD=1; NO_DOTENV=1 disables the
// lookup entirely and ENV_FILE points at an explicit file.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		if os.Getenv("NO_DOTENV") == "1" {
			return
		}
		if envFile := os.Getenv("ENV_FILE"); envFile != "" {
			applyDotenv(envFile)
			return
		}
		if path := findDotenv(); path != "" {
			applyDotenv(path)
		}
	})
}

func applyDotenv(path string) {
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		_ = godotenv.Overload(path)
		return
	}
	_ = godotenv.Load(path)
}

func findDotenv() string {
	dir, err := os.Getwd()
	if err != nil {
		return ".env"
	}
	for i := 0; i < 8; i++ {
		candidate := filepath.Join(dir, ".env")
		if fileExists(candidate) {
			return candidate
		}
		if fileExists(filepath.Join(dir, "go.mod")) || dirExists(filepath.Join(dir, ".git")) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
