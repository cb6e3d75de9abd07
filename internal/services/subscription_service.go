package services

import (
	"context"
	"fmt"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionService manages push subscription registration.
type SubscriptionService struct {
	repo *repository.SubscriptionRepository
}

// NewSubscriptionService creates a new instance of SubscriptionService.
func NewSubscriptionService(repo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// Save validates and stores the user's push subscription, replacing any
// previous one.
func (s *SubscriptionService) Save(ctx context.Context, userID primitive.ObjectID, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return fmt.Errorf("subscription endpoint and keys are required")
	}

	return s.repo.SaveSubscription(ctx, &models.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
	})
}

// Get returns the user's subscription, if any.
func (s *SubscriptionService) Get(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Delete removes the user's subscription.
func (s *SubscriptionService) Delete(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.DeleteByUserID(ctx, userID)
}
