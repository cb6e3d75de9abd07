package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a student account in the planner.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	FullName       string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	AvatarURL      string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	IsActive    bool   `bson:"is_active" json:"is_active"`
	IsVerified  bool   `bson:"is_verified" json:"is_verified"`
	VerifyToken string `bson:"verify_token,omitempty" json:"-"`

	// Notification settings - only WebPush and Email
	EmailNotifications bool `bson:"email_notifications" json:"email_notifications"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Email    string             `json:"email"`
	FullName string             `json:"full_name,omitempty"`
}
