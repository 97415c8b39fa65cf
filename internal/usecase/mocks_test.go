package usecase

import (
	"context"
	"encoding/json"

	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/domain"
)

type mockLedger struct {
	invokes  []chaincode.Request
	queries  []chaincode.Request
	results  map[string][]byte
	errs     map[string]error
	queryRes string
	queryErr error
}

func (m *mockLedger) Invoke(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) ([]byte, error) {
	m.invokes = append(m.invokes, req)
	if err := m.errs[req.Function]; err != nil {
		return nil, err
	}
	return m.results[req.Function], nil
}

func (m *mockLedger) Query(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) (string, error) {
	m.queries = append(m.queries, req)
	return m.queryRes, m.queryErr
}

func (m *mockLedger) invoked(function string) int {
	count := 0
	for _, req := range m.invokes {
		if req.Function == function {
			count++
		}
	}
	return count
}

type mockDatasetRepo struct {
	dataset     domain.Dataset
	owner       domain.User
	getErr      error
	created     []domain.Dataset
	linked      map[string]string
	removedRows int64
	active      []domain.Dataset
	byOwner     []domain.Dataset
	ownerIDs    []string
	synced      []domain.DatasetRecord
	syncWrites  map[string]bool
}

func (m *mockDatasetRepo) Get(ctx context.Context, id string) (domain.Dataset, error) {
	return m.dataset, m.getErr
}

func (m *mockDatasetRepo) GetWithOwner(ctx context.Context, id string) (domain.Dataset, domain.User, error) {
	return m.dataset, m.owner, m.getErr
}

func (m *mockDatasetRepo) Create(ctx context.Context, dataset domain.Dataset) error {
	m.created = append(m.created, dataset)
	return nil
}

func (m *mockDatasetRepo) LinkMedia(ctx context.Context, datasetID, mediaID string) error {
	if m.linked == nil {
		m.linked = map[string]string{}
	}
	m.linked[datasetID] = mediaID
	return nil
}

func (m *mockDatasetRepo) MarkRemoved(ctx context.Context, datasetID, userID string) (int64, error) {
	return m.removedRows, nil
}

func (m *mockDatasetRepo) ListActive(ctx context.Context) ([]domain.Dataset, error) {
	return m.active, nil
}

func (m *mockDatasetRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Dataset, error) {
	return m.byOwner, nil
}

func (m *mockDatasetRepo) IDsByOwner(ctx context.Context, userID string) ([]string, error) {
	return m.ownerIDs, nil
}

func (m *mockDatasetRepo) Sync(ctx context.Context, rec domain.DatasetRecord) (bool, error) {
	m.synced = append(m.synced, rec)
	return m.syncWrites[rec.ID], nil
}

type mockContractRepo struct {
	contract     domain.Contract
	getErr       error
	upserted     []domain.Contract
	resolved     []string
	resolvedRows int64
	cancelled    []string
	cancelRows   int64
	accepted     bool
	pending      []domain.Contract
	resolvedList []domain.Contract
}

func (m *mockContractRepo) Get(ctx context.Context, id string) (domain.Contract, error) {
	return m.contract, m.getErr
}

func (m *mockContractRepo) Upsert(ctx context.Context, contract domain.Contract) error {
	m.upserted = append(m.upserted, contract)
	return nil
}

func (m *mockContractRepo) ResolvePending(ctx context.Context, id, status, response string) (int64, error) {
	m.resolved = append(m.resolved, status)
	return m.resolvedRows, nil
}

func (m *mockContractRepo) CancelPending(ctx context.Context, id, userID string) (int64, error) {
	m.cancelled = append(m.cancelled, id)
	return m.cancelRows, nil
}

func (m *mockContractRepo) FindByDatasetAndUser(ctx context.Context, datasetID, userID string) (domain.Contract, error) {
	return m.contract, m.getErr
}

func (m *mockContractRepo) HasAccepted(ctx context.Context, datasetID, userID string) (bool, error) {
	return m.accepted, nil
}

func (m *mockContractRepo) ListPendingByUser(ctx context.Context, userID string) ([]domain.Contract, error) {
	return m.pending, nil
}

func (m *mockContractRepo) ListPendingByDatasets(ctx context.Context, datasetIDs []string) ([]domain.Contract, error) {
	return m.pending, nil
}

func (m *mockContractRepo) ListResolved(ctx context.Context, datasetIDs []string, userID string) ([]domain.Contract, error) {
	return m.resolvedList, nil
}

type mockOrgRepo struct {
	org    domain.Organization
	getErr error
}

func (m *mockOrgRepo) Get(ctx context.Context, id int) (domain.Organization, error) {
	return m.org, m.getErr
}

func (m *mockOrgRepo) ListActive(ctx context.Context) ([]domain.Organization, error) {
	return []domain.Organization{m.org}, nil
}

type mockLicenseRepo struct {
	licenses []domain.License
}

func (m *mockLicenseRepo) All(ctx context.Context) ([]domain.License, error) {
	return m.licenses, nil
}

type mockUserRepo struct {
	user   domain.User
	getErr error
}

func (m *mockUserRepo) Get(ctx context.Context, id string) (domain.User, error) {
	return m.user, m.getErr
}

type mockMailer struct {
	proposals []string
	accepted  []string
	rejected  []string
	downloads []string
	err       error
}

func (m *mockMailer) NotifyProposal(recipient string) error {
	m.proposals = append(m.proposals, recipient)
	return m.err
}

func (m *mockMailer) NotifyAccepted(recipient string) error {
	m.accepted = append(m.accepted, recipient)
	return m.err
}

func (m *mockMailer) NotifyRejected(recipient string) error {
	m.rejected = append(m.rejected, recipient)
	return m.err
}

func (m *mockMailer) NotifyDownload(recipient string) error {
	m.downloads = append(m.downloads, recipient)
	return m.err
}

type mockGranter struct {
	granted []string
	err     error
}

func (m *mockGranter) AutoGrant(ctx context.Context, datasetID, userID string, org domain.Organization, policy json.RawMessage, owner domain.User) error {
	m.granted = append(m.granted, datasetID)
	return m.err
}
