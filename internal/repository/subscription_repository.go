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

// SubscriptionRepository handles the push_subscriptions collection.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository.
func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection("push_subscriptions"),
	}
}

// SaveSubscription stores the user's push subscription, atomically
// replacing any previous one. A user has at most one active subscription.
func (r *SubscriptionRepository) SaveSubscription(ctx context.Context, sub *models.PushSubscription) error {
	sub.UpdatedAt = time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = sub.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": sub.UserID}, sub, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", sub.UserID.Hex()).Error("Failed to save push subscription")
		return err
	}

	logger.Log.WithField("user_id", sub.UserID.Hex()).Info("Push subscription saved")
	return nil
}

// GetByUserID fetches the user's subscription, if any.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetAll returns every stored subscription (used by the daily summary).
func (r *SubscriptionRepository) GetAll(ctx context.Context) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch push subscriptions")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var sub models.PushSubscription
		if err := cursor.Decode(&sub); err != nil {
			logger.Log.WithError(err).Error("Failed to decode push subscription")
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

// DeleteByUserID removes the user's subscription.
func (r *SubscriptionRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to delete push subscription")
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
