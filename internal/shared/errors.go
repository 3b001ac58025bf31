package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Playlist provider errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrWriteBack          = fmt.Errorf("playlist write-back failed")

	// Key notation errors (recoverable, track stays unresolved)
	ErrInvalidCamelotCode    = fmt.Errorf("invalid camelot code")
	ErrUnrecognizedKeyString = fmt.Errorf("unrecognized key string")
	ErrNoReferenceMatch      = fmt.Errorf("no reference match")

	// External lookup errors (recoverable, track stays unresolved)
	ErrLookupUnavailable      = fmt.Errorf("lookup unavailable")
	ErrNoResultFound          = fmt.Errorf("no result found")
	ErrMalformedLookupPayload = fmt.Errorf("malformed lookup payload")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
