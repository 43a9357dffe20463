// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is one entry on the wall of fame.
//
// Pin holds the category name, not its ObjectID. A renamed or deleted pin
// leaves members pointing at a name the rank table no longer knows; those
// members sort into the unranked bucket.
type Member struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	MemberID   string             `bson:"member_id" json:"memberId"` // immutable after create
	MemberName string             `bson:"member_name" json:"memberName"`
	Pin        string             `bson:"pin" json:"pin"`
	PinOrder   int                `bson:"pin_order" json:"pinOrder"`
	StartPin   time.Time          `bson:"start_pin" json:"startPin"`
	EndPin     time.Time          `bson:"end_pin" json:"endPin"`
	ImageURL   *string            `bson:"image_url" json:"imageUrl"`
	Enabled    bool               `bson:"enabled" json:"enabled"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
