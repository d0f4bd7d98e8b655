package services

import (
	"context"
	"fmt"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
)

type expiryService struct {
	voucherRepo    repositories.VoucherRepository
	redemptionRepo repositories.RedemptionRepository
	tx             repositories.Transactor
	now            func() time.Time
}

// NewExpiryService creates a new ExpiryService implementation
func NewExpiryService(
	voucherRepo repositories.VoucherRepository,
	redemptionRepo repositories.RedemptionRepository,
	tx repositories.Transactor,
) ExpiryService {
	return &expiryService{voucherRepo: voucherRepo, redemptionRepo: redemptionRepo, tx: tx, now: time.Now}
}

// ExpireVouchers deactivates expired vouchers and expires their pending
// redemptions. Both steps commit in one transaction.
func (s *expiryService) ExpireVouchers(ctx context.Context) (*models.ExpiryResult, error) {
	now := s.now()
	var result *models.ExpiryResult

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		result = &models.ExpiryResult{}
		ids, err := s.voucherRepo.DeactivateExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to deactivate expired vouchers: %w", err)
		}
		result.VouchersDeactivated = len(ids)
		if len(ids) == 0 {
			return nil
		}

		result.RedemptionsExpired, err = s.redemptionRepo.ExpirePending(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to expire redemptions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
