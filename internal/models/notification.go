package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID     primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID  `bson:"user_id" json:"user_id"`
	TaskID *primitive.ObjectID `bson:"task_id,omitempty" json:"task_id,omitempty"` // Может быть системное уведомление

	Type    string `bson:"type" json:"type"` // e.g. "deadline", "overdue", "daily_summary", "achievement"
	Title   string `bson:"title" json:"title"`
	Message string `bson:"message" json:"message"`

	SentAt    time.Time `bson:"sent_at" json:"sent_at"`
	WasOpened bool      `bson:"was_opened" json:"was_opened"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
