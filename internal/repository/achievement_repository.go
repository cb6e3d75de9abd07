package repository

import (
	"context"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AchievementRepository handles the achievement catalog and user awards.
type AchievementRepository struct {
	catalog *mongo.Collection
	awards  *mongo.Collection
}

// NewAchievementRepository creates a new instance of AchievementRepository.
func NewAchievementRepository(db *mongo.Database) *AchievementRepository {
	return &AchievementRepository{
		catalog: db.Collection("achievements"),
		awards:  db.Collection("user_achievements"),
	}
}

// GetAllAchievements returns the whole achievement catalog.
func (r *AchievementRepository) GetAllAchievements(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement

	cursor, err := r.catalog.Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch achievements")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var a models.Achievement
		if err := cursor.Decode(&a); err != nil {
			logger.Log.WithError(err).Error("Failed to decode achievement")
			return nil, err
		}
		achievements = append(achievements, a)
	}

	return achievements, nil
}

// GetUserAchievements returns all awards earned by the user.
func (r *AchievementRepository) GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	var awards []models.UserAchievement

	cursor, err := r.awards.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch user achievements")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var award models.UserAchievement
		if err := cursor.Decode(&award); err != nil {
			logger.Log.WithError(err).Error("Failed to decode user achievement")
			return nil, err
		}
		awards = append(awards, award)
	}

	return awards, nil
}

// AwardAchievement records an award unless the user already has it.
func (r *AchievementRepository) AwardAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) (*models.UserAchievement, error) {
	var existing models.UserAchievement
	err := r.awards.FindOne(ctx, bson.M{"user_id": userID, "achievement_id": achievementID}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}

	award := &models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now().UTC(),
	}

	result, err := r.awards.InsertOne(ctx, award)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to insert achievement award")
		return nil, err
	}
	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		award.ID = insertedID
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id":        userID.Hex(),
		"achievement_id": achievementID.Hex(),
	}).Info("Achievement awarded")
	return award, nil
}

// SeedCatalog inserts default achievements when the catalog is empty.
func (r *AchievementRepository) SeedCatalog(ctx context.Context, defaults []models.Achievement) error {
	count, err := r.catalog.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(defaults))
	for i := range defaults {
		defaults[i].CreatedAt = time.Now().UTC()
		docs = append(docs, defaults[i])
	}

	_, err = r.catalog.InsertMany(ctx, docs)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to seed achievement catalog")
		return err
	}

	logger.Log.WithField("count", len(docs)).Info("Achievement catalog seeded")
	return nil
}
