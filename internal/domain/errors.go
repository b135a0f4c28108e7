package domain

import "errors"

var (
	// ErrParseFailure signals an unreadable or unsupported document.
	ErrParseFailure = errors.New("document parse failure")
	// ErrNoChunks signals a document that yielded no indexable content.
	ErrNoChunks = errors.New("document produced no chunks")
	// ErrRateLimited signals a provider rate limit hit (retryable).
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderError signals a generative or embedding provider failure.
	ErrProviderError = errors.New("model provider error")
	// ErrInvalidRequest signals a request the provider rejected outright,
	// such as oversized input or an unknown model. Retrying cannot help.
	ErrInvalidRequest = errors.New("invalid provider request")
	// ErrAuthFailed signals missing or invalid credentials or identifiers.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrIndexUnavailable signals a vector store failure for the current request.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
