package types

import "errors"

// Error categories shared by every package of the module. The root package
// re-exports them; errors.Is matches any error of the category against them.
var (
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrTransport            = errors.New("transport failure")
	ErrResponseShape        = errors.New("response shape mismatch")
	ErrRemote               = errors.New("remote error")
)
