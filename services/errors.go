package services

import "errors"

// Shared service-level errors, mapped onto HTTP statuses by the handlers.
var (
	// Validation and business rules
	ErrValidationFailed                  = errors.New("validation failed")
	ErrNameRequired                      = errors.New("name is required")
	ErrScoresRequired                    = errors.New("both scores are required to complete a match")
	ErrInvalidMatchStatusTransition      = errors.New("invalid match status transition")
	ErrMatchNotLive                      = errors.New("match is not live")
	ErrPhaseTypeMismatch                 = errors.New("operation does not apply to this phase type")
	ErrPoolHasNoTeams                    = errors.New("pool has no teams")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Conflicts
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrRegistrationConflict   = errors.New("team is already registered for this tournament")

	// Entity-specific not-found errors
	ErrMatchNotFound        = errors.New("match not found")
	ErrPoolNotFound         = errors.New("pool not found")
	ErrPhaseNotFound        = errors.New("phase not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrSportNotFound        = errors.New("sport not found")
	ErrCourtNotFound        = errors.New("court not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)
