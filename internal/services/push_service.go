package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/pkg/webpush"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionStore is the subscription lookup the dispatcher needs.
type SubscriptionStore interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
}

// PushSender performs the actual network delivery of an encrypted message.
type PushSender interface {
	Send(ctx context.Context, sub webpush.Subscription, payload []byte) error
}

// PushService builds push payloads and delivers them to the user's
// registered subscription. It never returns an error: delivery is a
// boolean outcome and every failure is logged with its category.
type PushService struct {
	subs   SubscriptionStore
	sender PushSender
}

// NewPushService creates a new instance of PushService.
func NewPushService(subs SubscriptionStore, sender PushSender) *PushService {
	return &PushService{
		subs:   subs,
		sender: sender,
	}
}

// Deliver sends a push notification to the user. A missing subscription is
// the common, benign failure and is logged at warn level; transport and
// protocol failures are errors. Failed deliveries are retried only by the
// next scheduled pass, never here.
func (s *PushService) Deliver(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]interface{}) bool {
	if s.sender == nil {
		logrus.Warn("Push delivery is not configured, notification dropped")
		return false
	}

	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logrus.WithField("user_id", userID.Hex()).Warn("No push subscription for user")
		} else {
			logrus.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to look up push subscription")
		}
		return false
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	payload := map[string]interface{}{
		"title":              title,
		"body":               body,
		"icon":               "/icons/icon-192x192.png",
		"badge":              "/icons/icon-72x72.png",
		"tag":                "notification",
		"requireInteraction": false,
		"data":               data,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal push payload")
		return false
	}

	err = s.sender.Send(ctx, webpush.Subscription{
		Endpoint:  sub.Endpoint,
		P256dhKey: sub.P256dhKey,
		AuthKey:   sub.AuthKey,
	}, raw)
	if err != nil {
		s.logDeliveryFailure(userID, err)
		return false
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID.Hex(),
		"title":   title,
	}).Info("Push notification delivered")
	return true
}

func (s *PushService) logDeliveryFailure(userID primitive.ObjectID, err error) {
	entry := logrus.WithError(err).WithField("user_id", userID.Hex())

	var keyErr *webpush.KeyFormatError
	var signErr *webpush.SigningError
	var protoErr *webpush.ProtocolError
	var transportErr *webpush.TransportError

	switch {
	case errors.As(err, &keyErr), errors.As(err, &signErr):
		// Configuration defect: delivery is broken until the keys are fixed.
		entry.Error("VAPID key problem, push delivery disabled for this attempt")
	case errors.As(err, &protoErr):
		// 404/410 mean the subscription is gone. The row is deliberately
		// kept; pruning on 4xx is an open product question.
		entry.WithField("status", protoErr.StatusCode).Error("Push service rejected notification")
	case errors.As(err, &transportErr):
		entry.Error("Network failure while delivering notification")
	default:
		entry.Error("Failed to deliver push notification")
	}
}
