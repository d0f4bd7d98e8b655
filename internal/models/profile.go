package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile holds the public, cumulative impact of a user. Its ID is the user's ID.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	FullName      string             `bson:"full_name" json:"full_name"`
	AvatarURL     string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	TotalPoints   int64              `bson:"total_points" json:"total_points"`
	CarbonSavedKg float64            `bson:"carbon_saved_kg" json:"carbon_saved_kg"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
