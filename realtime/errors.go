package realtime

import (
	"fmt"

	oaikit "github.com/blue-context/oaikit"
)

// endpoint names realtime errors in APIError.Endpoint.
const endpoint = "realtime"

func newError(kind oaikit.ErrorKind, err error, format string, args ...any) *oaikit.APIError {
	return &oaikit.APIError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Endpoint: endpoint,
		Err:      err,
	}
}

func invalidArgument(format string, args ...any) error {
	return newError(oaikit.KindInvalidArgument, nil, format, args...)
}

func missingField(field string) error {
	return newError(oaikit.KindMissingConfiguration, nil, "%s is required", field)
}

func transportError(err error) error {
	return newError(oaikit.KindTransport, err, "%v", err)
}

func responseShapeError(err error) error {
	return newError(oaikit.KindResponseShape, err, "%v", err)
}
