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

type SportService interface {
	Create(ctx context.Context, name, code string) (*models.Sport, error)
	Get(ctx context.Context, id int) (*models.Sport, error)
	List(ctx context.Context) ([]*models.Sport, error)
	UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)
	Delete(ctx context.Context, id int) error
}

type sportService struct {
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewSportService(sportRepo repositories.SportRepository, uploader storage.FileUploader, logger *slog.Logger) SportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sportService{sportRepo: sportRepo, uploader: uploader, logger: logger}
}

func (s *sportService) Create(ctx context.Context, name, code string) (*models.Sport, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if code == "" {
		return nil, fmt.Errorf("%w: sport code is required", ErrValidationFailed)
	}
	sport := &models.Sport{Name: name, Code: code}
	if err := s.sportRepo.Create(ctx, nil, sport); err != nil {
		return nil, err
	}
	return sport, nil
}

func (s *sportService) Get(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, fmt.Errorf("%w: sport %d", ErrSportNotFound, id)
		}
		return nil, err
	}
	s.fillLogoURL(sport)
	return sport, nil
}

func (s *sportService) List(ctx context.Context) ([]*models.Sport, error) {
	sports, err := s.sportRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, sp := range sports {
		s.fillLogoURL(sp)
	}
	if sports == nil {
		return []*models.Sport{}, nil
	}
	return sports, nil
}

func (s *sportService) UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	sport, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("sports/%d/logo%s", id, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload sport logo: %w", err)
	}
	if err := s.sportRepo.UpdateLogoKey(ctx, nil, id, &result.Key); err != nil {
		return "", err
	}
	if sport.LogoKey != nil && *sport.LogoKey != result.Key {
		if err := s.uploader.Delete(ctx, *sport.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "old sport logo not deleted",
				slog.Int("sport_id", id), slog.Any("error", err))
		}
	}
	return result.Location, nil
}

func (s *sportService) Delete(ctx context.Context, id int) error {
	err := s.sportRepo.Delete(ctx, nil, id)
	if errors.Is(err, repositories.ErrSportNotFound) {
		return fmt.Errorf("%w: sport %d", ErrSportNotFound, id)
	}
	return err
}

func (s *sportService) fillLogoURL(sp *models.Sport) {
	if sp == nil || sp.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*sp.LogoKey)
	if url != "" {
		sp.LogoURL = &url
	}
}
