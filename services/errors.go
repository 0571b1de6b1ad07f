package services

import "errors"

var (
	ErrSessionAlreadyActive = errors.New("an active drinking session already exists")
	ErrSessionNotActive     = errors.New("drinking session is not active")
	ErrSessionNotFound      = errors.New("drinking session not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrProfileNotFound      = errors.New("biometric profile not set up")
	ErrInvalidDrink         = errors.New("drink volume must be positive and ABV between 0 and 1")
)
