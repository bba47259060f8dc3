package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/careline/internal/models"
)

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(c *fiber.Ctx) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// authenticateRequest resolves the user behind the request's bearer token.
// Expiry is checked against the service clock.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	claims := &authClaims{}
	_, err = jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return handler.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(handler.clock.Now),
	)
	if err != nil {
		return nil, err
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (handler *Handler) buildToken(user models.User) (string, error) {
	issuedAt := handler.clock.Now()
	claims := authClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(authTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
}
