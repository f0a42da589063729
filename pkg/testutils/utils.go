package testutils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"runtime"

	"github.com/slulibrary/nerdemo/config"
)

// NewTestConfig returns the default configuration with the UI and API bound to
// loopback. It never reads config.yaml from the working directory.
func NewTestConfig() *config.Config {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadConfig(filepath.Join(projectRoot, "pkg", "testutils", "testdata", "config.yaml"))
	if err != nil {
		panic(fmt.Errorf("failed to load test config: %w", err))
	}
	return cfg
}

// FindProjectRoot returns the absolute path to the project root directory.
func FindProjectRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("could not get current file path")
	}

	dir := filepath.Dir(currentFilePath)

	for {
		// go.mod marks the project root
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		if dir == filepath.Dir(dir) {
			return "", fmt.Errorf("project root not found")
		}

		dir = filepath.Dir(dir)
	}
}

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		bigInt, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[bigInt.Int64()]
	}
	return string(b)
}
