package services

import (
	"context"
	"errors"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/internal/utils"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// redeemAttempts bounds retries after a redemption code collision
	redeemAttempts        = 3
	redemptionHistorySize = 10
)

type rewardService struct {
	profileRepo    repositories.ProfileRepository
	voucherRepo    repositories.VoucherRepository
	redemptionRepo repositories.RedemptionRepository
	ledgerRepo     repositories.PointTransactionRepository
	tx             repositories.Transactor
	newCode        func() (string, error)
	now            func() time.Time
}

// NewRewardService creates a new RewardService implementation
func NewRewardService(
	profileRepo repositories.ProfileRepository,
	voucherRepo repositories.VoucherRepository,
	redemptionRepo repositories.RedemptionRepository,
	ledgerRepo repositories.PointTransactionRepository,
	tx repositories.Transactor,
) RewardService {
	return &rewardService{
		profileRepo:    profileRepo,
		voucherRepo:    voucherRepo,
		redemptionRepo: redemptionRepo,
		ledgerRepo:     ledgerRepo,
		tx:             tx,
		newCode:        utils.NewRedemptionCode,
		now:            time.Now,
	}
}

// ListVouchers returns the claimable vouchers annotated for the user's balance
func (s *rewardService) ListVouchers(ctx context.Context, userID primitive.ObjectID) (*models.VoucherCatalog, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Profile not found.")
	}

	now := s.now()
	vouchers, err := s.voucherRepo.FindAvailable(ctx, now)
	if err != nil {
		return nil, internalError(err)
	}

	offers := make([]*models.VoucherOffer, 0, len(vouchers))
	for _, v := range vouchers {
		offers = append(offers, &models.VoucherOffer{
			Voucher:            v,
			CanRedeem:          utils.CanRedeem(profile.TotalPoints, v.PointsRequired),
			PointsShort:        utils.PointsShort(profile.TotalPoints, v.PointsRequired),
			ExpiringSoon:       v.ExpiringSoon(now),
			BalanceAfterRedeem: utils.ProjectedBalance(profile.TotalPoints, v.PointsRequired),
		})
	}
	return &models.VoucherCatalog{UserPoints: profile.TotalPoints, Vouchers: offers}, nil
}

// Redeem claims a voucher. Stock, balance, redemption and ledger are written in
// one transaction; stock and balance are only changed when their conditions
// still hold at write time.
func (s *rewardService) Redeem(ctx context.Context, userID, voucherID primitive.ObjectID) (*models.RedemptionReceipt, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		return nil, lookupError(err, "Voucher not found.")
	}
	now := s.now()
	if !voucher.Available(now) {
		return nil, apperrors.New(apperrors.CodeVoucherUnavailable, "This voucher is no longer available.", nil)
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Profile not found.")
	}
	if !utils.CanRedeem(profile.TotalPoints, voucher.PointsRequired) {
		return nil, insufficientPoints(profile.TotalPoints, voucher.PointsRequired)
	}

	log := logger.WithFields(logrus.Fields{"user_id": userID.Hex(), "voucher_id": voucherID.Hex()})

	var redemption *models.Redemption
	for attempt := 1; attempt <= redeemAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, internalError(err)
		}

		redemption = &models.Redemption{
			UserID:         userID,
			VoucherID:      voucherID,
			PointsSpent:    voucher.PointsRequired,
			RedemptionCode: code,
			RedeemedAt:     now.UTC(),
			Status:         models.RedemptionStatusPending,
		}
		err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			return s.redeemOnce(ctx, voucher, redemption, now)
		})
		if err == nil {
			break
		}

		switch {
		case errors.Is(err, repositories.ErrDuplicate) && attempt < redeemAttempts:
			log.WithField("attempt", attempt).Warn("Redemption code collision, retrying")
			continue
		case errors.Is(err, repositories.ErrVoucherUnavailable):
			return nil, apperrors.New(apperrors.CodeVoucherUnavailable, "This voucher is no longer available.", err)
		case errors.Is(err, repositories.ErrInsufficientPoints):
			return nil, insufficientPoints(profile.TotalPoints, voucher.PointsRequired)
		default:
			log.WithError(err).Error("Redemption failed")
			return nil, internalError(err)
		}
	}

	log.WithField("redemption_id", redemption.ID.Hex()).Info("Voucher redeemed")
	return &models.RedemptionReceipt{
		Redemption:       redemption,
		Voucher:          voucher,
		RemainingBalance: utils.ProjectedBalance(profile.TotalPoints, voucher.PointsRequired),
	}, nil
}

func (s *rewardService) redeemOnce(ctx context.Context, voucher *models.Voucher, redemption *models.Redemption, now time.Time) error {
	if err := s.voucherRepo.DecrementRemaining(ctx, voucher.ID, now); err != nil {
		return err
	}
	if err := s.profileRepo.DeductPoints(ctx, redemption.UserID, voucher.PointsRequired); err != nil {
		return err
	}
	if err := s.redemptionRepo.Create(ctx, redemption); err != nil {
		return err
	}
	return s.ledgerRepo.Create(ctx, &models.PointTransaction{
		UserID:      redemption.UserID,
		Delta:       -voucher.PointsRequired,
		Reason:      models.PointReasonVoucherRedeemed,
		ReferenceID: redemption.ID,
		CreatedAt:   redemption.RedeemedAt,
	})
}

// History returns the user's latest redemptions with their vouchers
func (s *rewardService) History(ctx context.Context, userID primitive.ObjectID) ([]*models.RedemptionWithVoucher, error) {
	redemptions, err := s.redemptionRepo.FindRecentByUser(ctx, userID, redemptionHistorySize)
	if err != nil {
		return nil, internalError(err)
	}

	ids := make([]primitive.ObjectID, 0, len(redemptions))
	for _, r := range redemptions {
		ids = append(ids, r.VoucherID)
	}
	vouchers, err := s.voucherRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	byID := make(map[primitive.ObjectID]*models.Voucher, len(vouchers))
	for _, v := range vouchers {
		byID[v.ID] = v
	}

	history := make([]*models.RedemptionWithVoucher, 0, len(redemptions))
	for _, r := range redemptions {
		history = append(history, &models.RedemptionWithVoucher{Redemption: r, Voucher: byID[r.VoucherID]})
	}
	return history, nil
}

// PointHistory returns the user's point ledger, newest first
func (s *rewardService) PointHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.PointTransaction, error) {
	txns, err := s.ledgerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return txns, nil
}

func insufficientPoints(have, need int64) error {
	return apperrors.New(apperrors.CodeInsufficientPoints, "You don't have enough points for this voucher.", nil).
		WithDetails(map[string]int64{"user_points": have, "points_required": need, "points_short": utils.PointsShort(have, need)})
}
