package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GoalType string

const (
	GoalTypeSemester GoalType = "semester"
	GoalTypeMonthly  GoalType = "monthly"
	GoalTypeWeekly   GoalType = "weekly"
	GoalTypeCustom   GoalType = "custom"
)

// Goal is a study goal tracked by progress counter rather than deadline.
type Goal struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Type        GoalType `bson:"goal_type" json:"goal_type"`

	TargetValue  int `bson:"target_value" json:"target_value"`
	CurrentValue int `bson:"current_value" json:"current_value"`

	StartDate   time.Time  `bson:"start_date" json:"start_date"`
	EndDate     time.Time  `bson:"end_date" json:"end_date"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	IsCompleted bool `bson:"is_completed" json:"is_completed"`
	IsActive    bool `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
