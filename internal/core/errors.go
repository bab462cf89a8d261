// Package core defines the fundamental types and errors for Notely.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Storage errors
	ErrDatabaseNotFound = errors.New("database not found")
	ErrMigrationFailed  = errors.New("migration failed")
	ErrRecordNotFound   = errors.New("record not found")
	ErrNoteNotFound     = errors.New("note not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Provider errors
	ErrConfigurationMissing   = errors.New("provider credential not configured")
	ErrProviderTransport      = errors.New("provider request failed")
	ErrProviderAuth           = errors.New("provider rejected credentials")
	ErrTranslationUnavailable = errors.New("translation services are currently unavailable")

	// Market errors
	ErrUnsupportedMarket = errors.New("unsupported market type")

	// Template errors
	ErrTemplateNotFound = errors.New("template not found")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
