package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/repositories"
)

// ProfileHandler handles resident profile HTTP requests
type ProfileHandler struct {
	profileRepository repositories.ProfileRepository
	userRepository    repositories.UserRepository
}

func NewProfileHandler(profileRepo repositories.ProfileRepository, userRepo repositories.UserRepository) *ProfileHandler {
	return &ProfileHandler{
		profileRepository: profileRepo,
		userRepository:    userRepo,
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetOwnProfile)
	g.PUT("/profile", h.UpdateOwnProfile)
	g.GET("/users/:id", h.GetUserProfile)
}

// GetOwnProfile returns the authenticated resident's profile
func (h *ProfileHandler) GetOwnProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profile, err := h.profileRepository.GetByID(userID)
	if err == gorm.ErrRecordNotFound {
		// Accounts created before profiles existed get one lazily.
		user, uerr := h.userRepository.GetUserByID(userID)
		if uerr != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		profile = &models.Profile{
			ID:             user.ID,
			DisplayName:    &user.Name,
			NeighborhoodID: user.NeighborhoodID,
		}
		if err := h.profileRepository.Upsert(profile); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
		}
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    profile,
	})
}

// UpdateOwnProfile updates the authenticated resident's display name and avatar
func (h *ProfileHandler) UpdateOwnProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	neighborhoodID := getNeighborhoodIDFromContext(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile := &models.Profile{
		ID:             userID,
		DisplayName:    req.DisplayName,
		AvatarURL:      req.AvatarURL,
		NeighborhoodID: neighborhoodID,
	}
	if err := h.profileRepository.Upsert(profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    profile,
	})
}

// GetUserProfile returns another resident's public profile
func (h *ProfileHandler) GetUserProfile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	profile, err := h.profileRepository.GetByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"id":           profile.ID,
			"display_name": profile.DisplayNameOrDefault(),
			"avatar_url":   profile.AvatarURL,
		},
	})
}
