package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionStatus is the lifecycle of a claimed voucher
type RedemptionStatus string

const (
	RedemptionStatusPending RedemptionStatus = "pending"
	RedemptionStatusUsed    RedemptionStatus = "used"
	RedemptionStatusExpired RedemptionStatus = "expired"
)

// Redemption records one voucher claim
type Redemption struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	VoucherID      primitive.ObjectID `bson:"voucher_id" json:"voucher_id"`
	PointsSpent    int64              `bson:"points_spent" json:"points_spent"`
	RedemptionCode string             `bson:"redemption_code" json:"redemption_code"`
	RedeemedAt     time.Time          `bson:"redeemed_at" json:"redeemed_at"`
	Status         RedemptionStatus   `bson:"status" json:"status"`
}

// RedemptionWithVoucher is a redemption joined with its voucher
type RedemptionWithVoucher struct {
	*Redemption
	Voucher *Voucher `json:"voucher,omitempty"`
}

// RedemptionReceipt is returned after a successful redemption
type RedemptionReceipt struct {
	Redemption       *Redemption `json:"redemption"`
	Voucher          *Voucher    `json:"voucher"`
	RemainingBalance int64       `json:"remaining_balance"`
}
