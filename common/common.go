package common

import (
	"os"
	"path/filepath"
)

// GetExeDir returns the absolute directory of the running executable.
// Config and state files live next to the binary.
func GetExeDir() (string, error) {
	ex, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Dir(ex))
}
