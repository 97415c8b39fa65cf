package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/infrastructure/database/models"
)

const licenseCacheKey = "licenses"

// LicenseRepository serves the license catalog with a short-lived in-process
// cache, since the catalog changes rarely but is read on every contract
// listing.
type LicenseRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{
		db:    db,
		cache: cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (r *LicenseRepository) All(ctx context.Context) ([]domain.License, error) {
	if cached, found := r.cache.Get(licenseCacheKey); found {
		return cached.([]domain.License), nil
	}

	var rows []models.License
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	licenses := make([]domain.License, len(rows))
	for i, row := range rows {
		licenses[i] = domain.License{
			Code:        row.Code,
			Name:        row.Name,
			Description: strValue(row.Description),
			URL:         strValue(row.URL),
			Icon:        strValue(row.Icon),
		}
	}

	r.cache.Set(licenseCacheKey, licenses, cache.DefaultExpiration)
	return licenses, nil
}
