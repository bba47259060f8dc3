package services

import (
	"errors"

	"github.com/terraincognita07/careline/internal/models"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNoFamily             = errors.New("family membership required")
	ErrAlreadyInFamily      = errors.New("already in a family")
	ErrInvalidInviteCode    = errors.New("invalid invite code")
	ErrPatientExists        = errors.New("family already has a patient")
	ErrPhoneTaken           = errors.New("phone already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrCycleVersionConflict = models.ErrActiveCycleVersionConflict
	ErrInvalidRole          = errors.New("invalid role")
)
