package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement is a catalog entry; UserAchievement is an award of it.
type Achievement struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	Icon        string `bson:"icon,omitempty" json:"icon,omitempty"` // emoji or icon URL

	// Award condition, e.g. "tasks_completed" >= ConditionValue
	ConditionType  string `bson:"condition_type" json:"condition_type"`
	ConditionValue int    `bson:"condition_value" json:"condition_value"`

	Points int `bson:"points" json:"points"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type UserAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	AchievementID primitive.ObjectID `bson:"achievement_id" json:"achievement_id"`
	EarnedAt      time.Time          `bson:"earned_at" json:"earned_at"`
}
