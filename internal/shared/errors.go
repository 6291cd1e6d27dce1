package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Store and protocol errors
	ErrNotFound     = fmt.Errorf("classifier not found")
	ErrHandleClosed = fmt.Errorf("checkout handle already checked in")
	ErrNoMigrations = fmt.Errorf("no migrations to rollback")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
