package login

import "fmt"

// The login flow distinguishes four rejection classes because each drives
// different user-facing guidance: a bad hostname, bad credentials, a
// half-succeeded login, and an unsupported server release.

// NotLemmyInstanceError means the candidate host could not be reached at
// all (DNS, refused connection, timeout); most likely not an instance.
type NotLemmyInstanceError struct {
	Instance string
	Cause    error
}

func (e *NotLemmyInstanceError) Error() string {
	return fmt.Sprintf("%s does not appear to be a reachable instance", e.Instance)
}

func (e *NotLemmyInstanceError) Unwrap() error { return e.Cause }

// IncorrectLoginError means the instance answered and rejected the
// credentials.
type IncorrectLoginError struct {
	Cause error
}

func (e *IncorrectLoginError) Error() string { return "incorrect login" }

func (e *IncorrectLoginError) Unwrap() error { return e.Cause }

// FailedLoadingUserDataError means authentication succeeded but the site
// fetch that supplies the profile fields failed; no account is created.
type FailedLoadingUserDataError struct {
	Cause error
}

func (e *FailedLoadingUserDataError) Error() string { return "failed loading user data" }

func (e *FailedLoadingUserDataError) Unwrap() error { return e.Cause }

// ServerVersionOutdatedError carries the version the server reported.
type ServerVersionOutdatedError struct {
	Version string
}

func (e *ServerVersionOutdatedError) Error() string {
	return fmt.Sprintf("server version %s is older than the minimum supported", e.Version)
}
