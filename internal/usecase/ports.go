package usecase

import (
	"context"
	"encoding/json"

	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/domain"
)

// Ledger performs authenticated operations against the distributed ledger on
// behalf of an organization. Invoke submits a state-changing transaction,
// Query evaluates a read-only one. Both are blocking network round trips.
type Ledger interface {
	Invoke(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) ([]byte, error)
	Query(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) (string, error)
}

// DatasetRepository defines persistence/lookup for the dataset cache.
type DatasetRepository interface {
	Get(ctx context.Context, id string) (domain.Dataset, error)
	GetWithOwner(ctx context.Context, id string) (domain.Dataset, domain.User, error)
	Create(ctx context.Context, dataset domain.Dataset) error
	LinkMedia(ctx context.Context, datasetID, mediaID string) error
	MarkRemoved(ctx context.Context, datasetID, userID string) (int64, error)
	ListActive(ctx context.Context) ([]domain.Dataset, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Dataset, error)
	IDsByOwner(ctx context.Context, userID string) ([]string, error)
	// Sync upserts one ledger-reported record into the cache and reports
	// whether a row was actually written. Rows whose cached revision equals
	// the reported revision are left untouched.
	Sync(ctx context.Context, rec domain.DatasetRecord) (bool, error)
}

// ContractRepository defines persistence/lookup for access contracts.
type ContractRepository interface {
	Get(ctx context.Context, id string) (domain.Contract, error)
	Upsert(ctx context.Context, contract domain.Contract) error
	// ResolvePending moves a PENDING contract to status and records the
	// response, returning the number of rows matched.
	ResolvePending(ctx context.Context, id, status, response string) (int64, error)
	// CancelPending cancels a PENDING contract owned by userID, returning
	// the number of rows matched.
	CancelPending(ctx context.Context, id, userID string) (int64, error)
	FindByDatasetAndUser(ctx context.Context, datasetID, userID string) (domain.Contract, error)
	HasAccepted(ctx context.Context, datasetID, userID string) (bool, error)
	ListPendingByUser(ctx context.Context, userID string) ([]domain.Contract, error)
	ListPendingByDatasets(ctx context.Context, datasetIDs []string) ([]domain.Contract, error)
	ListResolved(ctx context.Context, datasetIDs []string, userID string) ([]domain.Contract, error)
}

// OrganizationRepository resolves ledger network participants.
type OrganizationRepository interface {
	Get(ctx context.Context, id int) (domain.Organization, error)
	ListActive(ctx context.Context) ([]domain.Organization, error)
}

// LicenseRepository exposes the license catalog.
type LicenseRepository interface {
	All(ctx context.Context) ([]domain.License, error)
}

// UserRepository resolves local users, including their verified email when
// one exists.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Mailer sends contract lifecycle notifications. Callers treat every send as
// fire-and-forget: failures are logged, never propagated.
type Mailer interface {
	NotifyProposal(recipient string) error
	NotifyAccepted(recipient string) error
	NotifyRejected(recipient string) error
	NotifyDownload(recipient string) error
}

// AccessGranter grants dataset access without an explicit proposal, used by
// the retrieval flow for open licenses and owner-approved downloads.
type AccessGranter interface {
	AutoGrant(ctx context.Context, datasetID, userID string, org domain.Organization, policy json.RawMessage, owner domain.User) error
}
