package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/account-client/internal/model"
)

// Claims represents JWT claims with token type. The subject is the session or challenge ID.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	issuer    string
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey, issuer string) model.TokenManager {
	return &JWT{secretKey: secretKey, issuer: issuer, now: time.Now}
}

const (
	typeSession   = "session"
	typeChallenge = "twofa"
)

// GenerateSessionToken creates the value of the session cookie.
func (j *JWT) GenerateSessionToken(sessionID string, ttl time.Duration) (string, error) {
	return j.generate(sessionID, typeSession, ttl)
}

// GenerateChallengeToken creates the value of the pending second-factor cookie.
func (j *JWT) GenerateChallengeToken(challengeID string, ttl time.Duration) (string, error) {
	return j.generate(challengeID, typeChallenge, ttl)
}

// ParseSessionToken validates a session token and returns its session ID.
func (j *JWT) ParseSessionToken(tokenString string) (string, error) {
	return j.parse(tokenString, typeSession)
}

// ParseChallengeToken validates a challenge token and returns its challenge ID.
func (j *JWT) ParseChallengeToken(tokenString string) (string, error) {
	return j.parse(tokenString, typeChallenge)
}

func (j *JWT) generate(subject, typ string, ttl time.Duration) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}

	return tokenString, nil
}

func (j *JWT) parse(tokenString, typ string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrTokenExpired
		}
		return "", fmt.Errorf("failed to parse %s token: %w", typ, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%s token is invalid", typ)
	}
	if claims.TokenType != typ {
		return "", fmt.Errorf("%w: %s", model.ErrTokenMismatch, claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%s token has no subject", typ)
	}
	return claims.Subject, nil
}
