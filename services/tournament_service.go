package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
	"github.com/opencourt/matchday/storage"
)

type CreateTournamentInput struct {
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	SportID      int       `json:"sport_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Location     *string   `json:"location"`
	SettingsJSON *string   `json:"settings_json"`
}

type UpdateTournamentInput struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Location     *string    `json:"location"`
	SettingsJSON *string    `json:"settings_json"`
}

type CreatePhaseInput struct {
	Name        string           `json:"name"`
	Type        models.PhaseType `json:"type"`
	OrderNumber int              `json:"order_number"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id int) (*models.Tournament, error)
	// GetDetail loads the tournament with sport, phases and registrations
	// fanned in concurrently.
	GetDetail(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error

	RegisterTeam(ctx context.Context, tournamentID, teamID int, seed *int) (*models.Registration, error)
	Registrations(ctx context.Context, tournamentID int) ([]*models.Registration, error)

	CreatePhase(ctx context.Context, tournamentID int, input CreatePhaseInput) (*models.Phase, error)
	Phases(ctx context.Context, tournamentID int) ([]*models.Phase, error)

	UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)
}

type tournamentService struct {
	txRunner         repositories.TxRunner
	tournamentRepo   repositories.TournamentRepository
	phaseRepo        repositories.PhaseRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	sportRepo        repositories.SportRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewTournamentService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	sportRepo repositories.SportRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		txRunner:         txRunner,
		tournamentRepo:   tournamentRepo,
		phaseRepo:        phaseRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		sportRepo:        sportRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrTournamentInvalidDateRange
	}
	if _, err := s.sportRepo.GetByID(ctx, nil, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, fmt.Errorf("%w: sport %d", ErrSportNotFound, input.SportID)
		}
		return nil, err
	}

	tournament := &models.Tournament{
		Name:         input.Name,
		Description:  input.Description,
		SportID:      input.SportID,
		Status:       models.TournamentStatusSoon,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Location:     input.Location,
		SettingsJSON: input.SettingsJSON,
	}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
		}
		return nil, err
	}
	s.fillLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) GetDetail(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		sport         *models.Sport
		phases        []*models.Phase
		registrations []*models.Registration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sport, err = s.sportRepo.GetByID(gctx, nil, tournament.SportID)
		return err
	})
	g.Go(func() error {
		var err error
		phases, err = s.phaseRepo.ListByTournament(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		registrations, err = s.registrationRepo.ListByTournament(gctx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Sport = sport
	for _, p := range phases {
		tournament.Phases = append(tournament.Phases, *p)
	}
	for _, r := range registrations {
		tournament.Registrations = append(tournament.Registrations, *r)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, nil, status)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.fillLogoURL(t)
	}
	if tournaments == nil {
		return []*models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
			}
			return err
		}

		if input.Name != nil {
			if *input.Name == "" {
				return ErrNameRequired
			}
			tournament.Name = *input.Name
		}
		if input.Description != nil {
			tournament.Description = input.Description
		}
		if input.StartDate != nil {
			tournament.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			tournament.EndDate = *input.EndDate
		}
		if !tournament.EndDate.After(tournament.StartDate) {
			return ErrTournamentInvalidDateRange
		}
		if input.Location != nil {
			tournament.Location = input.Location
		}
		if input.SettingsJSON != nil {
			tournament.SettingsJSON = input.SettingsJSON
		}

		if err := s.tournamentRepo.Update(ctx, tx, tournament); err != nil {
			if errors.Is(err, repositories.ErrTournamentNameConflict) {
				return ErrTournamentNameConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.fillLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
			}
			return err
		}
		if !models.IsValidTournamentStatusTransition(tournament.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
		}
		tournament.Status = status
		return s.tournamentRepo.Update(ctx, tx, tournament)
	})
	if err != nil {
		return nil, err
	}
	s.fillLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, nil, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
	}
	return err
}

func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int, seed *int) (*models.Registration, error) {
	tournament, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusSoon && tournament.Status != models.TournamentStatusRegistration {
		return nil, fmt.Errorf("%w: tournament is %s", ErrValidationFailed, tournament.Status)
	}

	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
		}
		return nil, err
	}
	if team.SportID != tournament.SportID {
		return nil, fmt.Errorf("%w: team %d plays a different sport", ErrValidationFailed, teamID)
	}

	registration := &models.Registration{
		TournamentID: tournamentID,
		TeamID:       teamID,
		Seed:         seed,
	}
	if err := s.registrationRepo.Create(ctx, nil, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	registration.Team = team
	return registration, nil
}

func (s *tournamentService) Registrations(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if registrations == nil {
		return []*models.Registration{}, nil
	}
	return registrations, nil
}

func (s *tournamentService) CreatePhase(ctx context.Context, tournamentID int, input CreatePhaseInput) (*models.Phase, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	switch input.Type {
	case models.PhaseTypeQualification, models.PhaseTypePools, models.PhaseTypeBracket, models.PhaseTypeLoserBracket:
	default:
		return nil, fmt.Errorf("%w: unknown phase type %q", ErrValidationFailed, input.Type)
	}

	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	phase := &models.Phase{
		TournamentID: tournamentID,
		Name:         input.Name,
		Type:         input.Type,
		OrderNumber:  input.OrderNumber,
	}
	if err := s.phaseRepo.Create(ctx, nil, phase); err != nil {
		return nil, err
	}
	return phase, nil
}

func (s *tournamentService) Phases(ctx context.Context, tournamentID int) ([]*models.Phase, error) {
	phases, err := s.phaseRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if phases == nil {
		return []*models.Phase{}, nil
	}
	return phases, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	tournament, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("tournaments/%d/logo%s", id, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, nil, id, &result.Key); err != nil {
		return "", err
	}

	// An old logo under a different extension is left to expire; same-key
	// uploads overwrite in place.
	if tournament.LogoKey != nil && *tournament.LogoKey != result.Key {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "old tournament logo not deleted",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}
	return result.Location, nil
}

func (s *tournamentService) fillLogoURL(t *models.Tournament) {
	if t == nil || t.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}
