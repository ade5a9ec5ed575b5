package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model     `json:"-"`
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name"`
	Email          string `json:"email" gorm:"uniqueIndex"`
	Password       string `json:"-"` // Store hashed password, ignore for JSON serialization
	FirebaseUID    string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	NeighborhoodID uint   `json:"neighborhood_id" gorm:"index"`
}

// Neighborhood is the tenant scope grouping users and content.
type Neighborhood struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name"`
	City       string `json:"city,omitempty"`
	InviteCode string `json:"invite_code,omitempty" gorm:"uniqueIndex"`
}

type SignupRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	InviteCode string `json:"invite_code" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID         uint   `json:"user_id"`
	NeighborhoodID uint   `json:"neighborhood_id"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}
