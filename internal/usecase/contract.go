package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/kehm/eckochain-client/envelope"
	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/domain"
)

// ContractUsecase is the contract state machine: propose, resolve, auto-grant
// and cancel, each pairing a ledger write with a conditioned cache write.
type ContractUsecase struct {
	ledger     Ledger
	datasets   DatasetRepository
	contracts  ContractRepository
	orgs       OrganizationRepository
	licenses   LicenseRepository
	users      UserRepository
	mailer     Mailer
	chaincode  string
	defaultOrg int
}

func NewContractUsecase(
	ledger Ledger,
	datasets DatasetRepository,
	contracts ContractRepository,
	orgs OrganizationRepository,
	licenses LicenseRepository,
	users UserRepository,
	mailer Mailer,
	chaincodeName string,
	defaultOrg int,
) *ContractUsecase {
	return &ContractUsecase{
		ledger:     ledger,
		datasets:   datasets,
		contracts:  contracts,
		orgs:       orgs,
		licenses:   licenses,
		users:      users,
		mailer:     mailer,
		chaincode:  chaincodeName,
		defaultOrg: defaultOrg,
	}
}

// Propose creates a contract proposal on the ledger and mirrors it locally
// with the dataset's policy snapshotted. The dataset owner is notified when
// they have a verified email.
func (uc *ContractUsecase) Propose(ctx context.Context, datasetID, proposal, userID string, orgID int) error {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return err
	}

	dataset, owner, err := uc.datasets.GetWithOwner(ctx, datasetID)
	if err != nil {
		return err
	}
	if !dataset.HasPolicy() {
		return domain.PolicyMissingError{DatasetID: datasetID}
	}

	_, err = uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.CreateContract(datasetID, proposal, userID))
	if err != nil {
		return err
	}

	err = uc.contracts.Upsert(ctx, domain.Contract{
		ID:        envelope.Hash(userID + datasetID),
		DatasetID: datasetID,
		UserID:    userID,
		Proposal:  proposal,
		Status:    domain.ContractStatusPending,
		Policy:    dataset.Policy,
	})
	if err != nil {
		return err
	}

	if owner.EmailVerified && owner.Email != "" {
		uc.notify(uc.mailer.NotifyProposal, owner.Email)
	}
	return nil
}

// Resolve accepts or rejects a pending contract. The cache update is
// conditioned on the row still being PENDING; zero matched rows means the
// contract was already resolved and surfaces as StaleStateError.
func (uc *ContractUsecase) Resolve(ctx context.Context, contractID string, accept bool, response, userID string, orgID int) error {
	org, err := uc.resolveOrg(ctx, orgID)
	if err != nil {
		return err
	}

	contract, err := uc.contracts.Get(ctx, contractID)
	if err != nil {
		return err
	}

	req := chaincode.ResolveContract(
		contract.DatasetID,
		accept,
		userID,
		envelope.Hash(contract.UserID+contract.DatasetID),
	)
	if _, err := uc.ledger.Invoke(ctx, org, uc.chaincode, req); err != nil {
		return err
	}

	status := domain.ContractStatusRejected
	if accept {
		status = domain.ContractStatusAccepted
	}
	matched, err := uc.contracts.ResolvePending(ctx, contractID, status, response)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.StaleStateError{Resource: "contract"}
	}

	proposer, err := uc.users.Get(ctx, contract.UserID)
	if err == nil && proposer.EmailVerified && proposer.Email != "" {
		if accept {
			uc.notify(uc.mailer.NotifyAccepted, proposer.Email)
		} else {
			uc.notify(uc.mailer.NotifyRejected, proposer.Email)
		}
	}
	return nil
}

// AutoGrant creates and immediately accepts a contract for the given user,
// bypassing the proposal step. Chaincode rejections are tolerated here: two
// concurrent retrievals for the same (user, dataset) pair race benignly and
// both must complete.
func (uc *ContractUsecase) AutoGrant(ctx context.Context, datasetID, userID string, org domain.Organization, policy json.RawMessage, owner domain.User) error {
	_, err := uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.CreateContract(datasetID, "", userID))
	if err != nil {
		if !errors.Is(err, domain.ErrTransaction) {
			return err
		}
		slog.Info("auto-grant: contract already exists on ledger",
			slog.String("dataset", datasetID),
			slog.String("error", err.Error()),
		)
	}

	id := envelope.Hash(userID + datasetID)
	_, err = uc.ledger.Invoke(ctx, org, uc.chaincode, chaincode.ResolveContract(datasetID, true, userID, id))
	if err != nil {
		if !errors.Is(err, domain.ErrTransaction) {
			return err
		}
		slog.Info("auto-grant: contract already resolved on ledger",
			slog.String("dataset", datasetID),
			slog.String("error", err.Error()),
		)
	}

	err = uc.contracts.Upsert(ctx, domain.Contract{
		ID:        id,
		DatasetID: datasetID,
		UserID:    userID,
		Status:    domain.ContractStatusAccepted,
		Policy:    policy,
	})
	if err != nil {
		return err
	}

	if owner.Email != "" {
		uc.notify(uc.mailer.NotifyDownload, owner.Email)
	}
	return nil
}

// Cancel marks a pending proposal as cancelled, scoped to the proposing user.
// No ledger transaction is issued: the deployed chaincode has no cancel
// function, so the ledger-side entry stays PENDING as a permanently orphaned
// record.
func (uc *ContractUsecase) Cancel(ctx context.Context, contractID, userID string) error {
	matched, err := uc.contracts.CancelPending(ctx, contractID, userID)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.StaleStateError{Resource: "contract"}
	}
	return nil
}

// DatasetContract returns the requesting user's contract for a dataset.
func (uc *ContractUsecase) DatasetContract(ctx context.Context, datasetID, userID string) (domain.Contract, error) {
	return uc.contracts.FindByDatasetAndUser(ctx, datasetID, userID)
}

// PendingProposals lists proposals created by the user.
func (uc *ContractUsecase) PendingProposals(ctx context.Context, userID string) ([]domain.Contract, error) {
	contracts, err := uc.contracts.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.withLicenses(ctx, contracts)
}

// PendingDatasetProposals lists pending proposals across the user's datasets.
func (uc *ContractUsecase) PendingDatasetProposals(ctx context.Context, ownerID string) ([]domain.Contract, error) {
	ids, err := uc.datasets.IDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	contracts, err := uc.contracts.ListPendingByDatasets(ctx, ids)
	if err != nil {
		return nil, err
	}
	return uc.withLicenses(ctx, contracts)
}

// ResolvedProposals lists accepted/rejected contracts visible to the user as
// dataset owner or as proposer.
func (uc *ContractUsecase) ResolvedProposals(ctx context.Context, userID string) ([]domain.Contract, error) {
	ids, err := uc.datasets.IDsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	contracts, err := uc.contracts.ListResolved(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	return uc.withLicenses(ctx, contracts)
}

// withLicenses replaces license codes in contract policies with the full
// catalog entry for display.
func (uc *ContractUsecase) withLicenses(ctx context.Context, contracts []domain.Contract) ([]domain.Contract, error) {
	licenses, err := uc.licenses.All(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]domain.License, len(licenses))
	for _, license := range licenses {
		byCode[license.Code] = license
	}

	for i, contract := range contracts {
		if len(contract.Policy) == 0 {
			continue
		}
		var policy map[string]any
		if err := json.Unmarshal(contract.Policy, &policy); err != nil {
			continue
		}
		code, ok := policy["license"].(string)
		if !ok {
			continue
		}
		license, ok := byCode[code]
		if !ok {
			continue
		}
		policy["license"] = license
		enriched, err := json.Marshal(policy)
		if err != nil {
			continue
		}
		contracts[i].Policy = enriched
	}
	return contracts, nil
}

func (uc *ContractUsecase) resolveOrg(ctx context.Context, orgID int) (domain.Organization, error) {
	if orgID == 0 {
		orgID = uc.defaultOrg
	}
	return uc.orgs.Get(ctx, orgID)
}

func (uc *ContractUsecase) notify(send func(string) error, recipient string) {
	if err := send(recipient); err != nil {
		slog.Warn("contract notification failed",
			slog.String("error", err.Error()),
			slog.String("module", "contract"),
		)
	}
}
