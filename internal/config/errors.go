package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps file and environment loading failures.
	ErrLoadConfig = errors.New("load config failed")
	// ErrMissingSecret is returned when no jwt_secret is configured. Tokens
	// cannot be verified without it.
	ErrMissingSecret = fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
)
