package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the streamrelay data directory.
// - Windows: %APPDATA%\streamrelay
// - Other OS: ~/.streamrelay
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "streamrelay")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".streamrelay"
	}
	return filepath.Join(home, ".streamrelay")
}

// DBPath returns the default path to the SQLite usage database.
func DBPath() string {
	return filepath.Join(DataDir(), "streamrelay.db")
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}
