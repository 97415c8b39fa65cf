package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/infrastructure/database/models"
)

type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Get(ctx context.Context, id string) (domain.Dataset, error) {
	var dataset models.Dataset
	err := r.db.WithContext(ctx).First(&dataset, "dataset_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Dataset{}, domain.NotFoundError{Resource: "dataset"}
	}
	if err != nil {
		return domain.Dataset{}, err
	}
	return toDomainDataset(dataset), nil
}

func (r *DatasetRepository) GetWithOwner(ctx context.Context, id string) (domain.Dataset, domain.User, error) {
	var dataset models.Dataset
	err := r.db.WithContext(ctx).
		Preload("User.Email", "email_status_name = ?", emailStatusVerified).
		Preload("User").
		First(&dataset, "dataset_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Dataset{}, domain.User{}, domain.NotFoundError{Resource: "dataset"}
	}
	if err != nil {
		return domain.Dataset{}, domain.User{}, err
	}

	var owner domain.User
	if dataset.User != nil {
		owner = toDomainUser(*dataset.User)
	}
	return toDomainDataset(dataset), owner, nil
}

func (r *DatasetRepository) Create(ctx context.Context, dataset domain.Dataset) error {
	row := models.Dataset{
		ID:                    dataset.ID,
		Rev:                   strPtr(dataset.Rev),
		Status:                dataset.Status,
		BibliographicCitation: strPtr(dataset.BibliographicCitation),
		GeoReference:          strPtr(dataset.GeoReference),
		Contributors:          dataset.Contributors,
		UserID:                strPtr(dataset.UserID),
		Metadata:              jsonColumn(dataset.Metadata),
		Policy:                jsonColumn(dataset.Policy),
		FileInfo:              jsonColumn(dataset.FileInfo),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *DatasetRepository) LinkMedia(ctx context.Context, datasetID, mediaID string) error {
	return r.db.WithContext(ctx).Create(&models.DatasetMedia{
		DatasetID: datasetID,
		MediaID:   mediaID,
	}).Error
}

func (r *DatasetRepository) MarkRemoved(ctx context.Context, datasetID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Dataset{}).
		Where("dataset_id = ? AND ecko_user_id = ?", datasetID, userID).
		Update("dataset_status_name", domain.DatasetStatusRemoved)
	return result.RowsAffected, result.Error
}

func (r *DatasetRepository) ListActive(ctx context.Context) ([]domain.Dataset, error) {
	var rows []models.Dataset
	err := r.db.WithContext(ctx).
		Find(&rows, "dataset_status_name = ?", domain.DatasetStatusActive).Error
	if err != nil {
		return nil, err
	}
	datasets := make([]domain.Dataset, len(rows))
	for i, row := range rows {
		datasets[i] = toDomainDataset(row)
	}
	return datasets, nil
}

func (r *DatasetRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Dataset, error) {
	var rows []models.Dataset
	err := r.db.WithContext(ctx).
		Find(&rows, "ecko_user_id = ? AND dataset_status_name = ?", userID, domain.DatasetStatusActive).Error
	if err != nil {
		return nil, err
	}
	datasets := make([]domain.Dataset, len(rows))
	for i, row := range rows {
		datasets[i] = toDomainDataset(row)
	}
	return datasets, nil
}

func (r *DatasetRepository) IDsByOwner(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Dataset{}).
		Where("ecko_user_id = ?", userID).
		Pluck("dataset_id", &ids).Error
	return ids, err
}

// Sync performs find-or-create keyed by dataset ID, overwriting the
// ledger-owned columns only when the cached revision differs from the
// reported one. Matching revisions are a no-op.
func (r *DatasetRepository) Sync(ctx context.Context, rec domain.DatasetRecord) (bool, error) {
	written := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Dataset
		err := tx.First(&existing, "dataset_id = ?", rec.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			written = true
			return tx.Create(&models.Dataset{
				ID:       rec.ID,
				Rev:      strPtr(rec.Rev),
				Status:   rec.Status,
				Metadata: jsonColumn(rec.Metadata),
				Policy:   jsonColumn(rec.Policy),
				FileInfo: jsonColumn(rec.FileInfo),
			}).Error
		}
		if err != nil {
			return err
		}

		if strValue(existing.Rev) == rec.Rev {
			return nil
		}
		written = true
		return tx.Model(&existing).Updates(map[string]any{
			"revision":            rec.Rev,
			"dataset_status_name": rec.Status,
			"metadata":            jsonColumn(rec.Metadata),
			"policy":              jsonColumn(rec.Policy),
			"file_info":           jsonColumn(rec.FileInfo),
		}).Error
	})
	return written, err
}
