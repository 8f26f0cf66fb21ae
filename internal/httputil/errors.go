package httputil

import "errors"

// Errors for request parsing. These are returned to API consumers, so they
// should tell the user what to fix.
var (
	ErrInvalidBody      = errors.New("the body of your request contains invalid or un-parseable data. Please check and try again")
	ErrRequestBodyEmpty = errors.New("the request body must not be empty")
)
