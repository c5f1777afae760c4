package services

import "errors"

// Common service errors
var (
	ErrAccountSuspended  = errors.New("Votre compte est suspendu. Contactez l'administration.")
	ErrAccountBanned     = errors.New("Votre compte est banni.")
	ErrInvalidTransition = errors.New("transition de statut invalide")
	ErrNoSession         = errors.New("session absente ou expirée")
	ErrForbidden         = errors.New("accès refusé")
	ErrNotFound          = errors.New("enregistrement introuvable")
)
