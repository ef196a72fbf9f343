package model

import "time"

// TokenManager signs and validates the stub server's cookie tokens.
type TokenManager interface {
	GenerateSessionToken(sessionID string, ttl time.Duration) (string, error)
	GenerateChallengeToken(challengeID string, ttl time.Duration) (string, error)
	ParseSessionToken(token string) (sessionID string, err error)
	ParseChallengeToken(token string) (challengeID string, err error)
}
