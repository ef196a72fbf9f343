package model

import "errors"

var (
	ErrTokenRevoked  = errors.New("session revoked")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("token type mismatch")
)
