package stanleytemp

import (
	"os"

	"github.com/pkg/errors"
)

// PopSecret reads a credential from the environment and immediately
// removes it, shrinking the window in which child processes or crash
// dumps could observe it. Call before any network client is built.
func PopSecret(key string) (string, error) {
	value, found := os.LookupEnv(key)
	if !found {
		return "", errors.Errorf("required environment variable %s is not set", key)
	}
	if err := os.Unsetenv(key); err != nil {
		return "", errors.Wrapf(err, "failed to remove %s from environment", key)
	}
	if len(value) == 0 {
		return "", errors.Errorf("environment variable %s is empty", key)
	}

	return value, nil
}
