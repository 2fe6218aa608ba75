package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller as seen by the services: who they
// are and whether the identity provider has verified their email.
type Identity struct {
	UserID        uuid.UUID
	Email         string
	EmailVerified bool
}

// FromContext extracts the caller identity from JWT claims in Fiber locals.
func FromContext(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Identity{}, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, errors.New("missing sub claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, err
	}

	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)

	return Identity{
		UserID:        userID,
		Email:         email,
		EmailVerified: verified,
	}, nil
}

// GetUserID is a shortcut for handlers that only need the caller ID.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	ident, err := FromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return ident.UserID, nil
}
