package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound          = errors.New("task not found")
	ErrConfigurationNotFound = errors.New("task configuration not found")

	// Hotel errors
	ErrHotelNotFound = errors.New("hotel not found")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrInvalidToken = errors.New("invalid authentication token")
)
