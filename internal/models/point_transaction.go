package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PointReasonActivityApproved = "activity_approved"
	PointReasonVoucherRedeemed  = "voucher_redeemed"
)

// PointTransaction records one change to a user's point balance.
type PointTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Delta       int64              `bson:"delta" json:"delta"`
	CarbonKg    float64            `bson:"carbon_kg,omitempty" json:"carbon_kg,omitempty"`
	Reason      string             `bson:"reason" json:"reason"`
	ReferenceID primitive.ObjectID `bson:"reference_id" json:"reference_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
