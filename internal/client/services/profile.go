package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/invalidation"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/photo"
	"github.com/dmitrijs2005/notesync/internal/common"
)

// ProfileService reads user profiles and edits the caller's own.
type ProfileService interface {
	// GetCallerProfile serves a nil Value when the caller has not onboarded.
	GetCallerProfile(ctx context.Context, mode ReadMode) (cache.Entry[*models.UserProfile], error)
	GetProfile(ctx context.Context, identity string, mode ReadMode) (cache.Entry[*models.UserProfile], error)
	ListUsers(ctx context.Context, mode ReadMode) (cache.Entry[[]models.ExtendedUserProfile], error)

	SaveProfile(ctx context.Context, profile models.UserProfile) error
	UploadPhoto(ctx context.Context, p models.ProfilePhoto) error
	RemovePhoto(ctx context.Context) error
}

type profileService struct {
	Deps
	client client.Client
}

func NewProfileService(c client.Client, deps Deps) ProfileService {
	return &profileService{Deps: deps.withDefaults(), client: c}
}

func (s *profileService) GetCallerProfile(ctx context.Context, mode ReadMode) (cache.Entry[*models.UserProfile], error) {
	return read(ctx, s.Deps, mode, cache.CurrentUserProfileKey(), func(ctx context.Context) (*models.UserProfile, error) {
		p, err := s.client.GetCallerProfile(ctx)
		return p, common.Remote("get caller profile", err)
	})
}

func (s *profileService) GetProfile(ctx context.Context, identity string, mode ReadMode) (cache.Entry[*models.UserProfile], error) {
	return read(ctx, s.Deps, mode, cache.UserProfileKey(identity), func(ctx context.Context) (*models.UserProfile, error) {
		p, err := s.client.GetProfile(ctx, identity)
		return p, common.Remote("get profile", err)
	})
}

func (s *profileService) ListUsers(ctx context.Context, mode ReadMode) (cache.Entry[[]models.ExtendedUserProfile], error) {
	return read(ctx, s.Deps, mode, cache.UserDirectoryKey(), func(ctx context.Context) ([]models.ExtendedUserProfile, error) {
		users, err := s.client.ListUsers(ctx)
		return users, common.Remote("list users", err)
	})
}

func validateProfile(p models.UserProfile) error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, common.NewValidationError("name", "Name is required"))
	}
	if p.College == "" {
		errs = append(errs, common.NewValidationError("college", "College is required"))
	}
	return errors.Join(errs...)
}

// mutation builds the invalidation request for a profile write. The
// identity is optional: without it only the family-wide keys are touched.
func (s *profileService) mutation(kind invalidation.Kind) invalidation.Mutation {
	m := invalidation.Mutation{Kind: kind}
	if identity, err := s.Identity(); err == nil {
		m.Identity = identity
	}
	return m
}

func (s *profileService) SaveProfile(ctx context.Context, profile models.UserProfile) error {
	profile = profile.Trimmed()
	if err := validateProfile(profile); err != nil {
		return err
	}
	if profile.Photo != nil {
		if err := photo.Validate(*profile.Photo); err != nil {
			return err
		}
	}

	if err := s.client.SaveCallerProfile(ctx, profile); err != nil {
		return common.Remote("save profile", err)
	}

	s.invalidate(ctx, s.mutation(invalidation.SaveProfile))
	return nil
}

// current returns the caller's profile as the service has it now.
func (s *profileService) current(ctx context.Context) (models.UserProfile, error) {
	e, err := s.GetCallerProfile(ctx, Latest)
	if err != nil {
		return models.UserProfile{}, err
	}
	if e.Value == nil {
		return models.UserProfile{}, fmt.Errorf("caller profile: %w", common.ErrNotFound)
	}
	return *e.Value, nil
}

func (s *profileService) UploadPhoto(ctx context.Context, p models.ProfilePhoto) error {
	if err := photo.Validate(p); err != nil {
		return err
	}

	profile, err := s.current(ctx)
	if err != nil {
		return err
	}
	profile.Photo = &p

	if err := s.client.SaveCallerProfile(ctx, profile); err != nil {
		return common.Remote("upload photo", err)
	}

	s.invalidate(ctx, s.mutation(invalidation.UploadPhoto))
	return nil
}

func (s *profileService) RemovePhoto(ctx context.Context) error {
	profile, err := s.current(ctx)
	if err != nil {
		return err
	}
	profile.Photo = nil

	if err := s.client.SaveCallerProfile(ctx, profile); err != nil {
		return common.Remote("remove photo", err)
	}

	s.invalidate(ctx, s.mutation(invalidation.RemovePhoto))
	return nil
}
