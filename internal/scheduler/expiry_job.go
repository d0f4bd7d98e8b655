package scheduler

import (
	"context"
	"time"

	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds a single expiry sweep
const runTimeout = time.Minute

// ExpiryScheduler periodically retires expired vouchers and their unused redemptions
type ExpiryScheduler struct {
	cron      *cron.Cron
	expirySvc services.ExpiryService
	cronExpr  string
}

// NewExpiryScheduler creates a scheduler. cronExpr uses the six-field form
// with seconds, e.g. "0 */15 * * * *".
func NewExpiryScheduler(expirySvc services.ExpiryService, cronExpr string) *ExpiryScheduler {
	return &ExpiryScheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		expirySvc: expirySvc,
		cronExpr:  cronExpr,
	}
}

func (s *ExpiryScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronExpr, s.expireVouchers); err != nil {
		return err
	}

	s.cron.Start()
	logger.WithFields(logrus.Fields{"schedule": s.cronExpr}).Info("Voucher expiry scheduler started")
	return nil
}

func (s *ExpiryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Voucher expiry scheduler stopped")
}

// RunOnce performs a single sweep outside the schedule
func (s *ExpiryScheduler) RunOnce(ctx context.Context) error {
	result, err := s.expirySvc.ExpireVouchers(ctx)
	if err != nil {
		return err
	}
	if result.VouchersDeactivated > 0 || result.RedemptionsExpired > 0 {
		logger.WithFields(logrus.Fields{
			"vouchers_deactivated": result.VouchersDeactivated,
			"redemptions_expired":  result.RedemptionsExpired,
		}).Info("Expired vouchers retired")
	}
	return nil
}

func (s *ExpiryScheduler) expireVouchers() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		logger.WithError(err).Error("Voucher expiry run failed")
	}
}
