package login

import "errors"

var (
	// ErrInvalidCredentials is returned when the provided username and/or
	// password do not match an active account.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountInactive is returned when the account exists but is disabled.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrAccountSuspended is returned when the account has been suspended by a
	// moderator.
	ErrAccountSuspended = errors.New("account is suspended")
)
