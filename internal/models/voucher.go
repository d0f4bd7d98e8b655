package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpiringSoonWindow marks vouchers whose expiry is closer than this
const ExpiringSoonWindow = 7 * 24 * time.Hour

// Voucher is a redeemable reward
type Voucher struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	CompanyName    string             `bson:"company_name" json:"company_name"`
	CompanyLogo    string             `bson:"company_logo,omitempty" json:"company_logo,omitempty"`
	PointsRequired int64              `bson:"points_required" json:"points_required"`
	ValueAmount    *float64           `bson:"value_amount,omitempty" json:"value_amount,omitempty"`
	TotalAvailable int64              `bson:"total_available" json:"total_available"`
	Remaining      int64              `bson:"remaining" json:"remaining"`
	ExpiresAt      *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the voucher has an expiry at or before now
func (v *Voucher) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !v.ExpiresAt.After(now)
}

// Available reports whether the voucher can currently be claimed by anyone
func (v *Voucher) Available(now time.Time) bool {
	return v.IsActive && v.Remaining > 0 && !v.Expired(now)
}

// ExpiringSoon reports whether the voucher expires within ExpiringSoonWindow
func (v *Voucher) ExpiringSoon(now time.Time) bool {
	return v.ExpiresAt != nil && !v.Expired(now) && v.ExpiresAt.Sub(now) < ExpiringSoonWindow
}

// Validate checks a voucher before it enters the catalog
func (v *Voucher) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(v.CompanyName) == "" {
		return errors.New("company_name is required")
	}
	if v.PointsRequired <= 0 {
		return errors.New("points_required must be positive")
	}
	if v.Remaining < 0 || v.TotalAvailable < 0 {
		return errors.New("remaining and total_available must not be negative")
	}
	if v.TotalAvailable == 0 {
		v.TotalAvailable = v.Remaining
	}
	if v.Remaining > v.TotalAvailable {
		return errors.New("remaining must not exceed total_available")
	}
	if v.ValueAmount != nil && *v.ValueAmount < 0 {
		return errors.New("value_amount must not be negative")
	}
	return nil
}

// VoucherOffer is a voucher as seen by one user
type VoucherOffer struct {
	*Voucher
	CanRedeem          bool  `json:"can_redeem"`
	PointsShort        int64 `json:"points_short"`
	ExpiringSoon       bool  `json:"expiring_soon"`
	BalanceAfterRedeem int64 `json:"balance_after_redeem"`
}

// VoucherCatalog is the rewards page payload
type VoucherCatalog struct {
	UserPoints int64           `json:"user_points"`
	Vouchers   []*VoucherOffer `json:"vouchers"`
}

// ExpiryResult reports what one expiry sweep changed
type ExpiryResult struct {
	VouchersDeactivated int   `json:"vouchers_deactivated"`
	RedemptionsExpired  int64 `json:"redemptions_expired"`
}
