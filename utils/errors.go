package utils

import (
	"errors"
	"fmt"
)

var ErrMissingValue = errors.New("value is required")

// WrapConfigError names the variable that failed to load
func WrapConfigError(key string, err error) error {
	return fmt.Errorf("config %s: %w", key, err)
}
