package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/infrastructure/database/models"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Get(ctx context.Context, id int) (domain.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).First(&org, "organization_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Organization{}, domain.NotFoundError{Resource: "organization"}
	}
	if err != nil {
		return domain.Organization{}, err
	}
	return toDomainOrganization(org), nil
}

func (r *OrganizationRepository) ListActive(ctx context.Context) ([]domain.Organization, error) {
	var rows []models.Organization
	err := r.db.WithContext(ctx).
		Find(&rows, "organization_status_name = ?", domain.OrganizationStatusActive).Error
	if err != nil {
		return nil, err
	}
	orgs := make([]domain.Organization, len(rows))
	for i, row := range rows {
		orgs[i] = toDomainOrganization(row)
	}
	return orgs, nil
}
