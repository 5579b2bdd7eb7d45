package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type ServicePackageRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewServicePackageRepository(db *gorm.DB, log *zap.Logger) ports.ServicePackageRepository {
	return &ServicePackageRepository{db: db, log: log}
}

func (r *ServicePackageRepository) Save(ctx context.Context, pkg *domain.ServicePackage) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(pkg).Error
}

func (r *ServicePackageRepository) FindByID(ctx context.Context, id int64) (*domain.ServicePackage, error) {
	var pkg domain.ServicePackage
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&pkg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *ServicePackageRepository) FindAll(ctx context.Context) ([]domain.ServicePackage, error) {
	var pkgs []domain.ServicePackage
	err := dbFromContext(ctx, r.db).WithContext(ctx).Order("price").Find(&pkgs).Error
	return pkgs, err
}

func (r *ServicePackageRepository) Delete(ctx context.Context, id int64) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Delete(&domain.ServicePackage{}, "id = ?", id).Error
}
