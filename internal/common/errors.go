// Package common defines shared constants and sentinel errors used across
// client layers of suiblog. Callers should use errors.Is to match these
// values; the typed errors below carry details and unwrap to their sentinel.
package common

import (
	"errors"
	"fmt"
)

var (
	// Compose-time errors, recoverable by editing the draft.
	ErrValidation = errors.New("validation error")

	// Publish pipeline errors.
	ErrUpload      = errors.New("upload failed")
	ErrTransaction = errors.New("transaction failed")

	// Read-path errors.
	ErrNotFound = errors.New("not found")
	ErrDecode   = errors.New("decode error")

	// A fetch was requested while another one is still loading.
	ErrFetchInFlight = errors.New("fetch already in progress")

	// Text that cannot be represented as UTF-8 bytes.
	ErrEncoding = errors.New("encoding error")
)

// ValidationError reports an invalid user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UploadError is returned when the blob store rejects an upload or answers
// with a body the uploader does not understand.
type UploadError struct {
	Status int
	Body   string
	Err    error
}

func (e *UploadError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("upload failed: status %d; body: %s", e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("upload failed: %v", e.Err)
	default:
		return fmt.Sprintf("upload failed: unexpected response: %s", e.Body)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUpload }

// TransactionError wraps a signing or execution failure reported by the
// wallet or the ledger. The original message is kept verbatim.
type TransactionError struct {
	Digest string
	Err    error
}

func (e *TransactionError) Error() string {
	if e.Digest != "" {
		return fmt.Sprintf("transaction %s failed: %v", e.Digest, e.Err)
	}
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// NotFoundError reports a ledger object that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("object %s not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError reports an object whose stored shape does not match the post schema.
type DecodeError struct {
	ID     string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode object %s: %s", e.ID, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ErrSessionExpired is the status message the wallet bridge uses when the
// session token must be refreshed.
var ErrSessionExpired = errors.New("session expired")
