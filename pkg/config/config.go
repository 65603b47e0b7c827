// Package config loads YAML configuration files into typed structs. Values
// may reference environment variables, and targets implementing Validator
// are checked after decoding.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load reads filename into target. Keys absent from the file keep the
// values target already holds.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return parse(filename, data, target)
}

// LoadOptional is Load for a file that may not exist. A missing file leaves
// target untouched apart from validation and reports found == false.
func LoadOptional[T any](filename string, target *T) (found bool, err error) {
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, validate(target)
	case err != nil:
		return false, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return true, parse(filename, data, target)
}

func parse[T any](filename string, data []byte, target *T) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return validate(target)
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
