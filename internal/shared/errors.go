package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig     = fmt.Errorf("configuration not found")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
	ErrUnsupportedDriver = fmt.Errorf("unsupported database driver")

	// Persistence errors
	ErrNotFound  = fmt.Errorf("record not found")
	ErrDuplicate = fmt.Errorf("duplicate record")

	// ErrNotInitialized is returned when the schema has not been migrated yet
	ErrNotInitialized = fmt.Errorf("database not initialized")

	// Dataset errors
	ErrDatasetNotFound = fmt.Errorf("dataset not found")
	ErrMissingColumn   = fmt.Errorf("missing dataset column")
	ErrMalformedRow    = fmt.Errorf("malformed dataset row")

	// Network generation errors
	ErrNoCandidates = fmt.Errorf("no user without follows left")

	// Authentication errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
