//go:build windows

package storage

import (
	"os"
	"path/filepath"
)

func platformConfigDefault() string {
	return filepath.Join(os.Getenv("APPDATA"), "statlab", "config")
}

func platformDataDefault() string {
	return filepath.Join(os.Getenv("APPDATA"), "statlab", "data")
}

func platformStateDefault() string {
	return filepath.Join(os.Getenv("LOCALAPPDATA"), "statlab", "state")
}
