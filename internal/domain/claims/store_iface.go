package claims

import "context"

// StoreAPI is the persistence boundary the claim service depends on. The
// postgres implementation lives in this package; tests substitute fakes.
type StoreAPI interface {
	// CreateClaim persists the claim and its initial documents as one unit.
	CreateClaim(ctx context.Context, claim Claim, documents []Document) (string, error)
	GetClaim(ctx context.Context, id string) (Claim, error)
	ListClaimsByUser(ctx context.Context, userID string) ([]Claim, error)
	ListClaimsByStatus(ctx context.Context, status Status) ([]Claim, error)
	// UpdateClaimStatus applies a transition guarded by the version the
	// caller read. A stale version yields ErrConcurrencyConflict; a missing
	// claim yields ErrNotFound. Nothing is written on either failure.
	UpdateClaimStatus(ctx context.Context, id string, expectedVersion int, newStatus Status, fields ReviewFields) error
	AddDocument(ctx context.Context, claimID string, doc Document) (string, error)
	ListDocuments(ctx context.Context, claimID string) ([]Document, error)
	GetDocument(ctx context.Context, claimID, documentID string) (Document, error)
}
