package domain

import "errors"

var (
	// ErrProviderUnavailable signals a failed embedding or chat provider call.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrStoreUnavailable signals a failed vector store call after retries.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrInitTimeout signals that an index never reached ready state.
	ErrInitTimeout = errors.New("index initialization timed out")
	// ErrNotInitialized signals use of the pipeline before the indexes are ready.
	ErrNotInitialized = errors.New("vector stores not initialized")
	// ErrUnparsableVerdict signals an oracle completion that does not match
	// the expected classification format.
	ErrUnparsableVerdict = errors.New("unparsable oracle verdict")
	// ErrVectorDimMismatch signals a vector whose dimension differs from the
	// index configuration.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
