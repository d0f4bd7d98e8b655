package services

import (
	"context"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

type catalogService struct {
	typeRepo    repositories.ActivityTypeRepository
	voucherRepo repositories.VoucherRepository
}

// NewCatalogService creates a new CatalogService implementation
func NewCatalogService(typeRepo repositories.ActivityTypeRepository, voucherRepo repositories.VoucherRepository) CatalogService {
	return &catalogService{typeRepo: typeRepo, voucherRepo: voucherRepo}
}

// CreateActivityType validates and stores an activity type. Unknown icons are rejected.
func (s *catalogService) CreateActivityType(ctx context.Context, activityType *models.ActivityType) (*models.ActivityType, error) {
	if err := activityType.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.typeRepo.Create(ctx, activityType); err != nil {
		return nil, internalError(err)
	}
	logger.WithFields(logrus.Fields{"activity_type_id": activityType.ID.Hex(), "name": activityType.Name}).Info("Activity type created")
	return activityType, nil
}

// CreateVoucher validates and stores a voucher
func (s *catalogService) CreateVoucher(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error) {
	if err := voucher.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, internalError(err)
	}
	logger.WithFields(logrus.Fields{"voucher_id": voucher.ID.Hex(), "name": voucher.Name}).Info("Voucher created")
	return voucher, nil
}
