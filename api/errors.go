package api

import (
	"errors"
	"fmt"
)

// RemoteError reports a request the server rejected. It carries the
// server-supplied message verbatim; callers that need to distinguish
// rejection kinds inspect Status.
type RemoteError struct {
	Route   string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Route, e.Status)
	}
	return e.Message
}

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
