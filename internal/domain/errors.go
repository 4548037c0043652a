package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInputSelected is returned when a scan is requested before any file was selected
	ErrNoInputSelected = errors.New("no input selected")

	// ErrRecognition is returned when the recognition engine fails on an input
	ErrRecognition = errors.New("recognition failed")

	// ErrEmptyIdentifier is returned when a lookup is attempted with an empty barcode
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrProductNotFound is returned when the remote store has no record for a barcode
	ErrProductNotFound = errors.New("product not found")

	// ErrTransientFailure is returned for network, timeout and server-side failures
	ErrTransientFailure = errors.New("remote store unavailable")

	// ErrMalformedResponse is returned when the remote payload is not a product record
	ErrMalformedResponse = errors.New("malformed response from remote store")

	// ErrRequestRejected is returned when the remote store refuses a request with a client error
	ErrRequestRejected = errors.New("request rejected by remote store")

	// ErrSyncFailed is returned when a category change could not be persisted
	ErrSyncFailed = errors.New("category sync failed")

	// ErrOperationInFlight is returned when an operation is already pending on the same controller or item
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrStaleSelection is returned when the input selection changed while an operation was pending
	ErrStaleSelection = errors.New("input selection changed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// Error kinds reported to API clients
const (
	KindNoInputSelected   = "NoInputSelected"
	KindRecognitionError  = "RecognitionError"
	KindEmptyIdentifier   = "EmptyIdentifier"
	KindNotFound          = "NotFound"
	KindTransientFailure  = "TransientFailure"
	KindMalformedResponse = "MalformedResponse"
	KindSyncFailed        = "SyncFailed"
	KindRejected          = "Rejected"
	KindOperationInFlight = "OperationInFlight"
	KindStaleSelection    = "StaleSelection"
	KindInternal          = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	// SyncFailed wraps the transport error, so it must be checked first
	{ErrSyncFailed, KindSyncFailed},
	{ErrNoInputSelected, KindNoInputSelected},
	{ErrRecognition, KindRecognitionError},
	{ErrEmptyIdentifier, KindEmptyIdentifier},
	{ErrProductNotFound, KindNotFound},
	{ErrMalformedResponse, KindMalformedResponse},
	{ErrTransientFailure, KindTransientFailure},
	{ErrRequestRejected, KindRejected},
	{ErrOperationInFlight, KindOperationInFlight},
	{ErrStaleSelection, KindStaleSelection},
}

// KindOf maps an error to its taxonomy name. nil maps to "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// RemoteError carries the remote store's response details behind a taxonomy sentinel
type RemoteError struct {
	Err     error
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status %d", e.Err, e.Status)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Err, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
