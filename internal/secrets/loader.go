package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source yields a value.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes where an API key may come from. The first non-empty
// location wins in the order File, Value, Env.
type Source struct {
	// Name is used in error messages.
	Name  string
	File  string
	Value string
	// Env names an environment variable consulted last.
	Env string
}

// Load resolves and trims the secret. A configured file that cannot be read
// or is empty is an error even when other locations are set.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%w: %s (set %s)", ErrNotConfigured, name, env)
	}

	return "", fmt.Errorf("%w: %s", ErrNotConfigured, name)
}
