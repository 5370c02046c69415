package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("token claims are invalid")

type Service interface {
	GenerateAccessToken(email string) (token string, expiresAt int64, err error)
	ParseAccessToken(tokenString string) (email string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs a token that identifies the caller by email only.
// Roles are never embedded; they are read from the user store on each call.
func (j *JWTService) GenerateAccessToken(email string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"email": email,
		"type":  TokenTypeAccess,
		"exp":   expiresAt,
	})
	return tokenString, expiresAt, err
}

// ParseAccessToken verifies signature and expiry and returns the email claim.
func (j *JWTService) ParseAccessToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	return EmailFromToken(token)
}

// EmailFromToken extracts the email of an already verified access token.
func EmailFromToken(token jwt.Token) (string, error) {
	if token == nil {
		return "", ErrInvalidClaims
	}
	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeAccess {
		return "", ErrInvalidClaims
	}
	emailVal, ok := token.Get("email")
	if !ok {
		return "", ErrInvalidClaims
	}
	email, ok := emailVal.(string)
	if !ok || email == "" {
		return "", ErrInvalidClaims
	}
	return email, nil
}
