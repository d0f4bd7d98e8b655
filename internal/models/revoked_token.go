package models

import "time"

// RevokedToken marks a signed-out access token until it would have expired anyway
type RevokedToken struct {
	ID        string    `bson:"_id" json:"jti"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}
