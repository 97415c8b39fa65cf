package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/infrastructure/database/models"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Get(ctx context.Context, id string) (domain.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, "contract_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Contract{}, domain.NotFoundError{Resource: "contract"}
	}
	if err != nil {
		return domain.Contract{}, err
	}
	return toDomainContract(contract), nil
}

// Upsert creates or overwrites the contract row keyed by its deterministic
// ID. The deterministic key makes this idempotent under duplicate
// submissions.
func (r *ContractRepository) Upsert(ctx context.Context, contract domain.Contract) error {
	row := models.Contract{
		ID:        contract.ID,
		DatasetID: contract.DatasetID,
		UserID:    strPtr(contract.UserID),
		Proposal:  strPtr(contract.Proposal),
		Status:    contract.Status,
		Policy:    jsonColumn(contract.Policy),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dataset_id", "ecko_user_id", "proposal", "contract_status_name", "policy"}),
	}).Create(&row).Error
}

func (r *ContractRepository) ResolvePending(ctx context.Context, id, status, response string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("contract_id = ? AND contract_status_name = ?", id, domain.ContractStatusPending).
		Updates(map[string]any{
			"contract_status_name": status,
			"response":             response,
		})
	return result.RowsAffected, result.Error
}

func (r *ContractRepository) CancelPending(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("contract_id = ? AND ecko_user_id = ? AND contract_status_name = ?", id, userID, domain.ContractStatusPending).
		Update("contract_status_name", domain.ContractStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *ContractRepository) FindByDatasetAndUser(ctx context.Context, datasetID, userID string) (domain.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		First(&contract, "dataset_id = ? AND ecko_user_id = ?", datasetID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Contract{}, domain.NotFoundError{Resource: "contract"}
	}
	if err != nil {
		return domain.Contract{}, err
	}
	return toDomainContract(contract), nil
}

func (r *ContractRepository) HasAccepted(ctx context.Context, datasetID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("dataset_id = ? AND ecko_user_id = ? AND contract_status_name = ?", datasetID, userID, domain.ContractStatusAccepted).
		Count(&count).Error
	return count > 0, err
}

func (r *ContractRepository) ListPendingByUser(ctx context.Context, userID string) ([]domain.Contract, error) {
	var rows []models.Contract
	err := r.db.WithContext(ctx).
		Preload("User.Email").
		Preload("User").
		Find(&rows, "ecko_user_id = ? AND contract_status_name = ?", userID, domain.ContractStatusPending).Error
	if err != nil {
		return nil, err
	}
	return toDomainContracts(rows), nil
}

func (r *ContractRepository) ListPendingByDatasets(ctx context.Context, datasetIDs []string) ([]domain.Contract, error) {
	if len(datasetIDs) == 0 {
		return nil, nil
	}
	var rows []models.Contract
	err := r.db.WithContext(ctx).
		Preload("User.Email").
		Preload("User").
		Find(&rows, "dataset_id IN ? AND contract_status_name = ?", datasetIDs, domain.ContractStatusPending).Error
	if err != nil {
		return nil, err
	}
	return toDomainContracts(rows), nil
}

func (r *ContractRepository) ListResolved(ctx context.Context, datasetIDs []string, userID string) ([]domain.Contract, error) {
	var rows []models.Contract
	err := r.db.WithContext(ctx).
		Preload("User.Email").
		Preload("User").
		Where("(dataset_id IN ? OR ecko_user_id = ?) AND contract_status_name IN ?",
			datasetIDs, userID, []string{domain.ContractStatusAccepted, domain.ContractStatusRejected}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainContracts(rows), nil
}

func toDomainContracts(rows []models.Contract) []domain.Contract {
	contracts := make([]domain.Contract, len(rows))
	for i, row := range rows {
		contracts[i] = toDomainContract(row)
	}
	return contracts
}
