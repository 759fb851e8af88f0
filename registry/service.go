package registry

import (
	"context"

	"github.com/veralith/provenance/chain"
)

// Service is the capability-typed surface of the remote content registry.
// A concrete binding exists per capability mode: a read-only binding whose
// write methods never succeed, and a signing binding tied to an account.
// Write operations submit a transaction and return its confirmed receipt;
// the service decides nothing about retries or timeouts beyond its own
// transport configuration.
type Service interface {
	// Register submits a content registration and waits for confirmation.
	// The new content id is carried by the ContentRegistered event in the
	// returned receipt, not by a return value.
	Register(ctx context.Context, contentURI, metadataURI string, contentType ContentType) (*chain.Receipt, error)

	// GetContent fetches a content record by id.
	GetContent(ctx context.Context, contentID int64) (*ContentRecord, error)

	// ContentsByCreator lists the ids of all content registered by an
	// account. Order is whatever the remote service returns.
	ContentsByCreator(ctx context.Context, creator string) ([]int64, error)

	// UpdateContentURI replaces the content URI. Creator-only; the remote
	// service rejects other callers.
	UpdateContentURI(ctx context.Context, contentID int64, contentURI string) error

	// UpdateMetadataURI replaces the metadata URI. Creator-only.
	UpdateMetadataURI(ctx context.Context, contentID int64, metadataURI string) error

	// SetActive flips the record's active flag. Creator-only.
	SetActive(ctx context.Context, contentID int64, active bool) error
}
