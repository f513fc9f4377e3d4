package util

import (
	"fmt"
	"os"
	"strings"
)

// Errors collects multiple error values behind a single error interface,
// so callers can report every missing configuration variable at once.
type Errors []error

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// RequireEnv fetches an environment variable, appending to errs if it
// isn't set.
func RequireEnv(varName string, errs *Errors) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		*errs = append(*errs, fmt.Errorf("environment variable %s must be set", varName))
	}
	return envVar
}

// EnvOrDefault fetches an environment variable, falling back to fallback
// if it isn't set.
func EnvOrDefault(varName string, fallback string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		return fallback
	}
	return envVar
}
