package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
	"github.com/opencourt/matchday/storage"
)

type TeamService interface {
	Create(ctx context.Context, name string, sportID int) (*models.Team, error)
	Get(ctx context.Context, id int) (*models.Team, error)
	ListBySport(ctx context.Context, sportID int) ([]*models.Team, error)
	Rename(ctx context.Context, id int, name string) (*models.Team, error)
	UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	sportRepo repositories.SportRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &teamService{
		teamRepo:  teamRepo,
		sportRepo: sportRepo,
		uploader:  uploader,
		logger:    logger,
	}
}

func (s *teamService) Create(ctx context.Context, name string, sportID int) (*models.Team, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.sportRepo.GetByID(ctx, nil, sportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, fmt.Errorf("%w: sport %d", ErrSportNotFound, sportID)
		}
		return nil, err
	}

	team := &models.Team{Name: name, SportID: sportID}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) Get(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: team %d", ErrTeamNotFound, id)
		}
		return nil, err
	}
	s.fillLogoURL(team)
	return team, nil
}

func (s *teamService) ListBySport(ctx context.Context, sportID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListBySport(ctx, nil, sportID)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.fillLogoURL(t)
	}
	if teams == nil {
		return []*models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) Rename(ctx context.Context, id int, name string) (*models.Team, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	team, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Name = name
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	team, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("teams/%d/logo%s", id, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, id, &result.Key); err != nil {
		return "", err
	}
	if team.LogoKey != nil && *team.LogoKey != result.Key {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "old team logo not deleted",
				slog.Int("team_id", id), slog.Any("error", err))
		}
	}
	return result.Location, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	err := s.teamRepo.Delete(ctx, nil, id)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return fmt.Errorf("%w: team %d", ErrTeamNotFound, id)
	}
	return err
}

func (s *teamService) fillLogoURL(t *models.Team) {
	if t == nil || t.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}
