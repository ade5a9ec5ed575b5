package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/neighborhq/backend/internal/models"
)

// getUserIDFromContext reads the authenticated user id from the JWT claims
// placed in context by the auth middleware. Returns 0 when unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// getNeighborhoodIDFromContext reads the user's active neighborhood scope.
func getNeighborhoodIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.NeighborhoodID
}
