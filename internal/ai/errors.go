package ai

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey: the provider credential is not configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// NetworkError wraps a transport-level failure (connection refused,
// timeout, cancellation) reaching the provider.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling AI provider: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-2xx answer from the provider, carrying its
// human-readable message.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI provider error (HTTP %d): %s", e.StatusCode, e.Message)
}

// UnexpectedResponseError: a 2xx answer that contained no usable message
// block.
type UnexpectedResponseError struct {
	Detail string
}

func (e *UnexpectedResponseError) Error() string {
	return "unexpected AI provider response shape: " + e.Detail
}
