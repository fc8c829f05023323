package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
)

// IssueSessionToken signs an HS256 token whose subject is the session id.
func IssueSessionToken(secret []byte, sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty session secret")
	}
	claims := jwt.MapClaims{
		"sub": sessionID.String(),
		"iss": constants.SessionIssuer,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateSessionToken checks signature, expiry and issuer and returns the
// session id from the subject claim.
func ValidateSessionToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithIssuer(constants.SessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing subject")
	}
	if _, err := uuid.Parse(sub); err != nil {
		return "", errors.New("malformed subject")
	}
	return sub, nil
}
