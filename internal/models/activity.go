package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityStatus is the review lifecycle of a submission
type ActivityStatus string

const (
	ActivityStatusPending  ActivityStatus = "pending"
	ActivityStatusApproved ActivityStatus = "approved"
	ActivityStatusRejected ActivityStatus = "rejected"
)

// Valid reports whether s is a known status
func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusPending, ActivityStatusApproved, ActivityStatusRejected:
		return true
	}
	return false
}

// GeoLocation is the device fix attached to a submission
type GeoLocation struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Accuracy  float64 `bson:"accuracy" json:"accuracy"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// Activity is one user submission
type Activity struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ActivityTypeID  primitive.ObjectID `bson:"activity_type_id" json:"activity_type_id"`
	Quantity        float64            `bson:"quantity" json:"quantity"`
	PointsEarned    int64              `bson:"points_earned" json:"points_earned"`
	CarbonSavedKg   float64            `bson:"carbon_saved_kg" json:"carbon_saved_kg"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PhotoURL        string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Location        *GeoLocation       `bson:"location,omitempty" json:"location,omitempty"`
	Status          ActivityStatus     `bson:"status" json:"status"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
	ReviewedAt      *time.Time         `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy      primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// ActivityWithType is an activity joined with its catalog entry
type ActivityWithType struct {
	*Activity
	ActivityType *ActivityType `json:"activity_type,omitempty"`
}
