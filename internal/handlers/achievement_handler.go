package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/internal/services"
	"github.com/Madiyar4554/StudentPlanner/pkg/logger"
	"github.com/Madiyar4554/StudentPlanner/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementHandler handles HTTP requests related to achievements.
type AchievementHandler struct {
	Service *services.AchievementService
}

// NewAchievementHandler creates a new instance of AchievementHandler.
func NewAchievementHandler(service *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{Service: service}
}

// GetCatalogHandler handles GET /achievements.
func (h *AchievementHandler) GetCatalogHandler(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Service.GetCatalog(r.Context())
	if err != nil {
		logger.Log.Errorf("Failed to fetch achievement catalog: %v", err)
		http.Error(w, "Failed to get achievements", http.StatusInternalServerError)
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(achievements)
}

// GetUserAchievementsHandler handles GET /achievements/my.
func (h *AchievementHandler) GetUserAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	awards, err := h.Service.GetUserAchievements(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch user achievements: %v", err)
		http.Error(w, "Failed to get achievements", http.StatusInternalServerError)
		return
	}
	if awards == nil {
		awards = []models.UserAchievement{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(awards)
}
