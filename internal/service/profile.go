package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"questlog/internal/model"
	"questlog/internal/repository"
)

const maxDisplayName = 64

type ProfileService struct {
	repo     ProfileRepository
	settings Settings
	now      func() time.Time
}

func NewProfileService(repo ProfileRepository, settings Settings) *ProfileService {
	return &ProfileService{
		repo:     repo,
		settings: settings,
		now:      time.Now,
	}
}

// RegisterProfile creates the caller's profile. Registering again returns the
// stored profile unchanged.
func (s *ProfileService) RegisterProfile(ctx context.Context, userID int64, displayName, path string) (*model.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	path = strings.ToLower(strings.TrimSpace(path))

	if displayName == "" || utf8.RuneCountInString(displayName) > maxDisplayName {
		return nil, fmt.Errorf("%w: display name must be 1-%d characters", ErrValidationFailed, maxDisplayName)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrValidationFailed)
	}
	if len(s.settings.Paths) > 0 && !slices.Contains(s.settings.Paths, path) {
		return nil, fmt.Errorf("%w: unknown path %q", ErrValidationFailed, path)
	}

	profile := &model.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Path:        path,
		CreatedAt:   s.now().UTC(),
	}

	err := s.repo.CreateProfile(ctx, profile)
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
