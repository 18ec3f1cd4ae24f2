package providers

import "errors"

var (
	// ErrAuthTokenIsRequired is returned if you are trying to initialize
	// a provider which requires some token to work.
	ErrAuthTokenIsRequired = errors.New("auth token is required")

	// ErrDatabasePathIsRequired is returned if local database provider
	// is initialized without a path to the database file.
	ErrDatabasePathIsRequired = errors.New("database path is required")
)
