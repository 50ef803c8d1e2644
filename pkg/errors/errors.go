package errors

import "errors"

var (
	// ErrFileNotFound indicates the local file is missing, unreadable or not a regular file.
	ErrFileNotFound = errors.New("file not found")

	// ErrUploadRejected indicates the server answered the content upload with a non-2xx status.
	ErrUploadRejected = errors.New("upload rejected by server")

	// ErrAttachRejected indicates the server answered the file attach with a non-2xx status.
	ErrAttachRejected = errors.New("attach rejected by server")

	// ErrMalformedResponse indicates a 2xx response whose body could not be understood.
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")

	// ErrInvalidRequest indicates the caller supplied incomplete parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsServerRejection reports whether the server refused either step.
func IsServerRejection(err error) bool {
	return errors.Is(err, ErrUploadRejected) ||
		errors.Is(err, ErrAttachRejected)
}

// IsLocalError reports whether the failure happened before anything was sent.
func IsLocalError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsTransportError reports whether the exchange itself failed.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrMalformedResponse)
}
