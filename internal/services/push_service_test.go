package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/pkg/webpush"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeSubscriptionStore struct {
	sub *models.PushSubscription
	err error
}

func (f *fakeSubscriptionStore) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

type fakeSender struct {
	calls    []webpush.Subscription
	payloads [][]byte
	err      error
}

func (f *fakeSender) Send(ctx context.Context, sub webpush.Subscription, payload []byte) error {
	f.calls = append(f.calls, sub)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestDeliverMissingSubscription(t *testing.T) {
	sender := &fakeSender{}
	svc := NewPushService(&fakeSubscriptionStore{err: mongo.ErrNoDocuments}, sender)

	ok := svc.Deliver(context.Background(), primitive.NewObjectID(), "title", "body", nil)

	assert.False(t, ok)
	assert.Empty(t, sender.calls, "no network attempt without a subscription")
}

func TestDeliverSuccess(t *testing.T) {
	store := &fakeSubscriptionStore{sub: &models.PushSubscription{
		Endpoint:  "https://fcm.googleapis.com/fcm/send/abc",
		P256dhKey: "p256dh-value",
		AuthKey:   "auth-value",
	}}
	sender := &fakeSender{}
	svc := NewPushService(store, sender)

	ok := svc.Deliver(context.Background(), primitive.NewObjectID(), "⏰ Приближается дедлайн!", "Задача 'X'", map[string]interface{}{"type": "deadline"})
	require.True(t, ok)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "https://fcm.googleapis.com/fcm/send/abc", sender.calls[0].Endpoint)
	assert.Equal(t, "p256dh-value", sender.calls[0].P256dhKey)
	assert.Equal(t, "auth-value", sender.calls[0].AuthKey)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(sender.payloads[0], &payload))
	assert.Equal(t, "⏰ Приближается дедлайн!", payload["title"])
	assert.Equal(t, "Задача 'X'", payload["body"])
	assert.Equal(t, "/icons/icon-192x192.png", payload["icon"])
	assert.Equal(t, "notification", payload["tag"])
	assert.Equal(t, map[string]interface{}{"type": "deadline"}, payload["data"])
}

func TestDeliverSenderFailure(t *testing.T) {
	store := &fakeSubscriptionStore{sub: &models.PushSubscription{Endpoint: "https://example.com/push"}}
	sender := &fakeSender{err: &webpush.ProtocolError{StatusCode: 410, Body: "gone"}}
	svc := NewPushService(store, sender)

	ok := svc.Deliver(context.Background(), primitive.NewObjectID(), "title", "body", nil)
	assert.False(t, ok)
}

func TestDeliverLookupFailure(t *testing.T) {
	sender := &fakeSender{}
	svc := NewPushService(&fakeSubscriptionStore{err: errors.New("mongo down")}, sender)

	ok := svc.Deliver(context.Background(), primitive.NewObjectID(), "title", "body", nil)
	assert.False(t, ok)
	assert.Empty(t, sender.calls)
}

func TestDeliverWithoutSenderConfigured(t *testing.T) {
	svc := NewPushService(&fakeSubscriptionStore{}, nil)

	ok := svc.Deliver(context.Background(), primitive.NewObjectID(), "title", "body", nil)
	assert.False(t, ok)
}
