package service

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCodeNotFound      = errors.New("activation code not found")
	ErrCodeUsed          = errors.New("activation code already used")
	ErrCodeInvalid       = errors.New("activation code invalidated")
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidRole       = errors.New("invalid role value")
)
