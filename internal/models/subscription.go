package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription holds the WebPush delivery address and client keys
// registered by the browser. At most one active subscription per user:
// registering a new one replaces the old row.
type PushSubscription struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Endpoint  string `bson:"endpoint" json:"endpoint"`
	P256dhKey string `bson:"p256dh_key" json:"p256dh_key"`
	AuthKey   string `bson:"auth_key" json:"auth_key"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
