package handlers

import (
	"context"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/repositories"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository    repositories.UserRepository
	profileRepository repositories.ProfileRepository
	firebaseAuth      *auth.Client
	jwtSecret         string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil
// when federated login is not configured; the local paths keep working.
func NewAuthHandler(userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository:    userRepo,
		profileRepository: profileRepo,
		firebaseAuth:      firebaseAuthClient,
		jwtSecret:         jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup registers a resident: the invite code resolves the neighborhood,
// and a profile row is created alongside the user.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	neighborhood, err := h.userRepository.GetNeighborhoodByInviteCode(req.InviteCode)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown invite code")
	}

	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hashedPassword),
		NeighborhoodID: neighborhood.ID,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile := &models.Profile{
		ID:             user.ID,
		DisplayName:    &req.Name,
		NeighborhoodID: neighborhood.ID,
	}
	if err := h.profileRepository.Upsert(profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken    string `json:"idToken" validate:"required"`
	InviteCode string `json:"invite_code"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT,
// creating the user on first login. New users need an invite code to join
// a neighborhood.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Federated login is not configured")
	}

	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(token.UID)
	if err == gorm.ErrRecordNotFound {
		// Fall back to email: an existing local account adopts the UID.
		user, err = h.userRepository.GetUserByEmail(email)
		if err == gorm.ErrRecordNotFound {
			user, err = h.createFederatedUser(token.UID, email, name, req.InviteCode)
			if err != nil {
				return err
			}
		} else if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		} else {
			user.FirebaseUID = token.UID
			if err := h.userRepository.UpdateUser(user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to link Firebase UID")
			}
		}
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

func (h *AuthHandler) createFederatedUser(firebaseUID, email, name, inviteCode string) (*models.User, error) {
	if inviteCode == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invite code required for new residents")
	}
	neighborhood, err := h.userRepository.GetNeighborhoodByInviteCode(inviteCode)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Unknown invite code")
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		FirebaseUID:    firebaseUID,
		NeighborhoodID: neighborhood.ID,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	profile := &models.Profile{ID: user.ID, NeighborhoodID: neighborhood.ID}
	if name != "" {
		profile.DisplayName = &name
	}
	if err := h.profileRepository.Upsert(profile); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
	}
	return user, nil
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:         user.ID,
		NeighborhoodID: user.NeighborhoodID,
		Email:          user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
