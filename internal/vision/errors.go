package vision

import "errors"

var (
	// ErrNotConfigured is returned when provider credentials are missing or
	// rejected. It is fatal for a request and should be surfaced to the user
	// as "feature not configured" rather than as a generic failure.
	ErrNotConfigured = errors.New("vision provider not configured")

	// ErrTransport is returned when the provider cannot be reached or answers
	// with a transient server-side failure.
	ErrTransport = errors.New("vision provider transport failure")

	// ErrImageUnreachable is returned when the provider could not fetch an
	// image passed by reference.
	ErrImageUnreachable = errors.New("vision provider could not fetch image")
)

// retryableInline reports whether a by-reference failure may be retried once
// with the image downloaded and sent inline.
func retryableInline(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrImageUnreachable)
}
