package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
)

type TaskType string

const (
	TaskTypeCoursework TaskType = "coursework"
	TaskTypeExam       TaskType = "exam"
	TaskTypeLaboratory TaskType = "laboratory"
	TaskTypeLecture    TaskType = "lecture"
	TaskTypeSeminar    TaskType = "seminar"
	TaskTypeProject    TaskType = "project"
	TaskTypeHomework   TaskType = "homework"
	TaskTypeOther      TaskType = "other"
)

type TaskPriority string

const (
	TaskPriorityYearlyDebt   TaskPriority = "yearly_debt"
	TaskPrioritySemesterDebt TaskPriority = "semester_debt"
	TaskPriorityCurrent      TaskPriority = "current"
)

// Task represents a single study task with a hard deadline.
// IsOverdue is a denormalized cache of "status == overdue": it is flipped
// together with Status by the overdue transition and cleared only by
// explicit completion.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Type     TaskType     `bson:"task_type" json:"task_type"`
	Priority TaskPriority `bson:"priority" json:"priority"`
	Status   TaskStatus   `bson:"status" json:"status"`

	Deadline    time.Time  `bson:"deadline" json:"deadline"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	IsOverdue   bool       `bson:"is_overdue" json:"is_overdue"`

	IsRecurring       bool   `bson:"is_recurring" json:"is_recurring"`
	RecurrencePattern string `bson:"recurrence_pattern,omitempty" json:"recurrence_pattern,omitempty"` // "daily", "weekly", "monthly"

	// Color for the calendar view
	Color string `bson:"color" json:"color"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
