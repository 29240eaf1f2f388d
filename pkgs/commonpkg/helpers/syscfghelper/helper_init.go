package syscfghelper

import (
	"errors"
	"os"
)

////////////////////////////////////////////////////////////////////////////////

const (
	DEFAULT_CONF_FILE = "conf.yaml"
)

////////////////////////////////////////////////////////////////////////////////

// ResolveConfigPath returns path when given, else DEFAULT_CONF_FILE when it
// exists in the working directory, else "".
func ResolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	ok, err := fileExists(DEFAULT_CONF_FILE)
	if err != nil {
		return "", err
	}
	if ok {
		return DEFAULT_CONF_FILE, nil
	}
	return "", nil
}

func fileExists(filename string) (bool, error) {
	info, err := os.Stat(filename)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
