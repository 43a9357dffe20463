// internal/domain/models/pin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pin is a membership tier. Lower Rank sorts first.
type Pin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"` // trimmed, unique
	Rank      int                `bson:"rank" json:"rank"`
	LogoURL   *string            `bson:"logo_url" json:"logoUrl"`
	Color     *string            `bson:"color" json:"color"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
