package twitter

import "fmt"

// AuthenticationError means the bearer-token exchange was rejected.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authenticate: %v (check your consumer key and secret, and that they are authorized for the v2 API)", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NotFoundError means a tweet could not be located: deleted, protected,
// or never existed.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tweet %d not found (deleted, protected, or never existed)", e.ID)
}

// TransportError wraps a network or HTTP-level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means a response decoded, or failed to decode,
// into something other than the shape the API documents.
type MalformedResponseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
