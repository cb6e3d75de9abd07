package repository

import (
	"context"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository handles database operations related to tasks.
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		collection: db.Collection("tasks"),
	}
}

// CreateTask inserts a new task in the database.
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert task")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	task.ID = insertedID

	logger.Log.WithField("task_id", task.ID.Hex()).Info("Task created successfully")
	return task, nil
}

// GetTaskByID fetches a task belonging to the given user.
func (r *TaskRepository) GetTaskByID(ctx context.Context, id, userID primitive.ObjectID) (*models.Task, error) {
	var task models.Task

	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&task)
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Warn("Failed to find task by ID")
		return nil, err
	}

	return &task, nil
}

// GetTasks fetches the user's tasks with optional status/type filters.
func (r *TaskRepository) GetTasks(ctx context.Context, userID primitive.ObjectID, status, taskType string) ([]models.Task, error) {
	var tasks []models.Task

	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	if taskType != "" {
		filter["task_type"] = taskType
	}

	findOptions := options.Find().SetSort(bson.M{"deadline": 1})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch tasks")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			logger.Log.WithError(err).Error("Failed to decode task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to a task owned by the user.
func (r *TaskRepository) UpdateTask(ctx context.Context, id, userID primitive.ObjectID, update map[string]interface{}) error {
	update["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to update task")
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	logger.Log.WithField("task_id", id.Hex()).Info("Task updated successfully")
	return nil
}

// DeleteTask removes a task owned by the user.
func (r *TaskRepository) DeleteTask(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to delete task")
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	logger.Log.WithField("task_id", id.Hex()).Info("Task deleted successfully")
	return nil
}

// MarkOverdueTasks flips every task past its deadline into the overdue
// state. Both is_overdue and status are set by the same UpdateMany, so a
// task is never left half-transitioned. Re-running immediately matches
// nothing and returns 0.
func (r *TaskRepository) MarkOverdueTasks(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"deadline":   bson.M{"$lt": now},
		"status":     bson.M{"$in": []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}},
		"is_overdue": false,
	}
	update := bson.M{"$set": bson.M{
		"is_overdue": true,
		"status":     models.TaskStatusOverdue,
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to mark overdue tasks")
		return 0, err
	}

	return result.ModifiedCount, nil
}

// GetTasksDueWithin returns incomplete tasks with from < deadline <= to.
func (r *TaskRepository) GetTasksDueWithin(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	filter := bson.M{
		"deadline": bson.M{"$gt": from, "$lte": to},
		"status":   bson.M{"$ne": models.TaskStatusCompleted},
	}
	return r.findTasks(ctx, filter)
}

// GetOverdueTasks returns incomplete tasks whose deadline already passed.
func (r *TaskRepository) GetOverdueTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	filter := bson.M{
		"deadline": bson.M{"$lt": now},
		"status":   bson.M{"$ne": models.TaskStatusCompleted},
	}
	return r.findTasks(ctx, filter)
}

// CountTasksInWindow counts the user's tasks with a deadline inside
// [from, to) and how many of them are completed.
func (r *TaskRepository) CountTasksInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (total, completed int64, err error) {
	windowFilter := bson.M{
		"user_id":  userID,
		"deadline": bson.M{"$gte": from, "$lt": to},
	}

	total, err = r.collection.CountDocuments(ctx, windowFilter)
	if err != nil {
		return 0, 0, err
	}

	windowFilter["status"] = models.TaskStatusCompleted
	completed, err = r.collection.CountDocuments(ctx, windowFilter)
	if err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}

// CountOverdue counts the user's incomplete tasks past their deadline.
func (r *TaskRepository) CountOverdue(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"user_id":  userID,
		"deadline": bson.M{"$lt": now},
		"status":   bson.M{"$ne": models.TaskStatusCompleted},
	})
}

// CountCompleted counts all tasks the user has ever completed.
func (r *TaskRepository) CountCompleted(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  models.TaskStatusCompleted,
	})
}

// CountAll counts all tasks the user has created.
func (r *TaskRepository) CountAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (r *TaskRepository) findTasks(ctx context.Context, filter bson.M) ([]models.Task, error) {
	var tasks []models.Task

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to query tasks")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			logger.Log.WithError(err).Error("Failed to decode task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}
